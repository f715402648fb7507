// Package chatclient implements the messaging core: the conversation list
// and chat thread view-models driven by feed snapshots, and the REST actions
// they perform. The feed source and the REST transport are both interfaces,
// so the package is exercised against in-memory fakes in tests and against
// the live service in production.
package chatclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/vivaha/backend/internal/models"
)

// ErrNotAuthenticated signals that a view was opened without a session; the
// caller redirects to authentication instead of subscribing.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the explicit credential set handed to every view-model. There
// is no ambient storage; whoever constructs a view supplies the identity it
// acts as.
type Session struct {
	Token     string
	UserID    string
	AccountID string
}

func (s Session) authenticated() bool {
	return s.Token != "" && s.AccountID != ""
}

// API is the REST surface the messaging core calls. Implementations decode
// the uniform envelope and surface domain failures as *APIError.
type API interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) error
	MarkConversationRead(ctx context.Context, conversationID string) error
	UploadImage(ctx context.Context, conversationID, dataURL string) (string, error)
	ReportConversation(ctx context.Context, conversationID string, reason models.ReportReason, description string) error
	DeleteConversation(ctx context.Context, conversationID string) error
}

// APIError is a well-formed domain failure: the server answered with
// success=false. Code carries machine-readable causes such as
// INSUFFICIENT_TOKENS.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsInsufficientTokens reports whether err is the monetization gate: the
// recipient must be unlocked with tokens before messaging succeeds.
func IsInsufficientTokens(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == models.CodeInsufficientTokens
}

// User-facing strings. The upsell message is distinct from the generic
// failure so the monetization gate never reads as a technical error.
const (
	MsgUpsell       = "You need tokens to message this member. Please purchase a plan to continue."
	MsgSendFailed   = "Failed to send message"
	MsgUploadFailed = "Failed to upload image"
	MsgReportFailed = "Failed to submit report"
	MsgDeleteFailed = "Failed to delete conversation"
)

// userMessage maps an error to what the user sees: the upsell for the token
// gate, the server's own message for other domain failures, the generic
// fallback for transport failures.
func userMessage(err error, generic string) string {
	if IsInsufficientTokens(err) {
		return MsgUpsell
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return generic
}
