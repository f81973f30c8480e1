package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageType distinguishes text from uploaded media messages. For photo and
// audio messages Content holds the blob reference returned by the upload
// collaborator; the core never inspects the bytes behind it.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessagePhoto MessageType = "photo"
	MessageAudio MessageType = "audio"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessagePhoto, MessageAudio:
		return true
	}
	return false
}

// Message is immutable once persisted. SenderName is a snapshot taken at send
// time and does not follow later account renames.
type Message struct {
	ID         uuid.UUID   `json:"id"`
	OrderID    uuid.UUID   `json:"order_id"`
	SenderID   uuid.UUID   `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	CreatedAt  time.Time   `json:"created_at"`
}
