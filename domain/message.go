package domain

import (
	"context"
	"time"
)

// MaxMessageLength is the maximum number of characters of a direct message.
const MaxMessageLength = 500

// Message represents a direct message between two users. Messages are
// immutable once sent, except for the IsRead flag which transitions
// false -> true in bulk when the receiver opens the conversation.
type Message struct {
	ID         int       `json:"id"`
	SenderID   int       `json:"sender_id" gorm:"notNull;index"`
	ReceiverID int       `json:"receiver_id" gorm:"notNull;index"`
	Content    string    `json:"content" gorm:"notNull"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// Conversation summarizes the message history with one partner: the
// partner's public profile bits, the most recent message, and how many
// of the partner's messages are still unread.
type Conversation struct {
	PartnerID       int      `json:"partner_id"`
	PartnerUsername string   `json:"partner_username"`
	PartnerName     string   `json:"partner_name"`
	LastMessage     *Message `json:"last_message,omitempty"`
	UnreadCount     int      `json:"unread_count"`
}

// MessageService is a set of methods to manipulate and work with the
// Message model. Every operation is gated by the chat predicate of the
// VisibilityService: callers that may not chat get EFORBIDDEN, except for
// Conversations which silently filters ineligible partners out.
type MessageService interface {
	Send(ctx context.Context, message *Message) error
	Conversation(ctx context.Context, userID, partnerID int, page CursorPage) ([]Message, error)
	Conversations(ctx context.Context, userID int) ([]Conversation, error)
	MarkRead(ctx context.Context, userID, partnerID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
}
