package models

import (
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeDocument MessageType = "document"
)

func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeDocument:
		return true
	}
	return false
}

// Message is one unit of communication within a conversation. Exactly one of
// Text or a media URL is meaningfully populated, governed by Type. Messages
// are never deleted individually; deletion is conversation-level.
type Message struct {
	MessageID      string      `json:"messageId" bson:"_id"`
	ConversationID string      `json:"conversationId" bson:"conversation_id"`
	SenderID       string      `json:"senderId" bson:"sender_id"`
	ReceiverID     string      `json:"receiverId" bson:"receiver_id"`
	Text           string      `json:"text" bson:"text"`
	Type           MessageType `json:"type" bson:"type"`
	ImageURL       *string     `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	DocumentURL    *string     `json:"documentUrl,omitempty" bson:"document_url,omitempty"`
	Timestamp      time.Time   `json:"timestamp" bson:"timestamp"`
	IsRead         bool        `json:"isRead" bson:"is_read"`
	ReadAt         *time.Time  `json:"readAt" bson:"read_at,omitempty"`
	IsDelivered    bool        `json:"isDelivered" bson:"is_delivered"`
	DeliveredAt    time.Time   `json:"deliveredAt" bson:"delivered_at"`
	DeviceType     string      `json:"deviceType,omitempty" bson:"device_type,omitempty"`
}

// Validate enforces the text/media exclusivity invariant.
func (m *Message) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid message type %q", m.Type)
	}
	switch m.Type {
	case MessageTypeText:
		if m.Text == "" {
			return fmt.Errorf("text message requires non-empty text")
		}
	case MessageTypeImage:
		if m.ImageURL == nil || *m.ImageURL == "" {
			return fmt.Errorf("image message requires imageUrl")
		}
	case MessageTypeDocument:
		if m.DocumentURL == nil || *m.DocumentURL == "" {
			return fmt.Errorf("document message requires documentUrl")
		}
	}
	return nil
}

type SendMessageRequest struct {
	ConversationID string      `json:"conversationId" binding:"required"`
	Text           string      `json:"text"`
	Type           MessageType `json:"type" binding:"required"`
	ImageURL       *string     `json:"imageUrl,omitempty"`
	DeviceType     string      `json:"deviceType"`
}

type UploadImageRequest struct {
	Image          string `json:"image" binding:"required"`
	ConversationID string `json:"conversationId" binding:"required"`
}
