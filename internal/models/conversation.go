package models

import "time"

// Conversation is one user's summary view of a two-party thread. Each party
// owns an independent summary document so unread counts and flags diverge
// per side. The count is authoritative from the store; clients never
// increment it locally.
type Conversation struct {
	ConversationID  string     `json:"conversationId" bson:"conversation_id"`
	OwnerID         string     `json:"-" bson:"owner_id"`
	OtherUserID     string     `json:"otherUserId" bson:"other_user_id"`
	OtherUserName   string     `json:"otherUserName" bson:"other_user_name"`
	OtherUserPhoto  *string    `json:"otherUserPhoto" bson:"other_user_photo,omitempty"`
	LastMessage     *string    `json:"lastMessage" bson:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime" bson:"last_message_time,omitempty"`
	UnreadCount     int        `json:"unreadCount" bson:"unread_count"`
	IsPinned        bool       `json:"isPinned" bson:"is_pinned"`
	IsMuted         bool       `json:"isMuted" bson:"is_muted"`
	IsArchived      bool       `json:"isArchived" bson:"is_archived"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
}

// StartConversationRequest opens (or returns) the thread with another
// member.
type StartConversationRequest struct {
	OtherUserID string `json:"otherUserId" binding:"required"`
}

// PairConversationID derives the canonical thread id for two members. Both
// sides derive the same id regardless of who opens the conversation.
func PairConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
