package session

import (
	"sync"

	"github.com/diogo/wikichat/internal/models"
)

// Transcript is the ordered list of messages shown to the user. It only grows,
// except for the removal of the pending placeholder.
type Transcript struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

// NewTranscript returns an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds msg to the end of the transcript
func (t *Transcript) Append(msg models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Remove deletes the message with the given ID. It reports whether a message
// was removed.
func (t *Transcript) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, msg := range t.messages {
		if msg.ID == id {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Messages returns a copy of the transcript
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message, if any
func (t *Transcript) Last() (models.ChatMessage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return models.ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// PendingCount returns the number of pending placeholders
func (t *Transcript) PendingCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, msg := range t.messages {
		if msg.IsPending() {
			n++
		}
	}
	return n
}
