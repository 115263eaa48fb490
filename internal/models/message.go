package models

import "github.com/google/uuid"

// Sender identifies who produced a transcript entry
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	// SenderPending marks the placeholder shown while an exchange is in flight
	SenderPending Sender = "pending"
)

// ChatMessage is a single transcript entry. It is never mutated after creation;
// a pending message is removed and replaced by a new assistant message.
type ChatMessage struct {
	ID     string
	Text   string
	Sender Sender
}

// NewChatMessage creates a message with a fresh ID
func NewChatMessage(text string, sender Sender) ChatMessage {
	return ChatMessage{
		ID:     uuid.NewString(),
		Text:   text,
		Sender: sender,
	}
}

// IsPending reports whether the message is the in-flight placeholder
func (m ChatMessage) IsPending() bool {
	return m.Sender == SenderPending
}
