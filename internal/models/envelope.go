package models

// Error codes surfaced inside the response envelope. Clients branch on the
// code, not the message text.
const (
	CodeInsufficientTokens = "INSUFFICIENT_TOKENS"
)

// Envelope is the uniform response wrapper for every chat and admin REST
// call. Callers must branch on Success before trusting Data.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ChangeEvent is published after every write that alters a conversation or
// its messages. Subscribers re-query and push a full snapshot; the event
// carries no payload beyond the affected keys.
type ChangeEvent struct {
	ConversationID string   `json:"conversationId"`
	UserIDs        []string `json:"userIds"`
}
