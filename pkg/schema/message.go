package schema

import (
	"time"

	// Packages
	uuid "github.com/google/uuid"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is one entry in the conversation. The gateway owns the ordered
// message list; insertion order is display order.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "user", "agent" or "system"
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// MessageRequest is the body of a turn submission to the assistant.
type MessageRequest struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

// HistoryResponse is the stored conversation for the current session.
type HistoryResponse struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Message type constants
const (
	RoleUser   = "user"
	RoleAgent  = "agent"
	RoleSystem = "system"
)

// InitTurn is the canned first turn submitted for a brand-new session.
const InitTurn = "init"

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMessage creates a message with a fresh identifier and the current time.
func NewMessage(role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
