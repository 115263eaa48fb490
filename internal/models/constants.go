// Package models contains data types and constants for the wikichat client and backend.
package models

// Endpoints
const (
	// DefaultEndpoint is the chat endpoint of a locally running backend.
	DefaultEndpoint = "http://127.0.0.1:5000/chat"

	// DefaultListenAddr is where `wikichat serve` listens by default.
	DefaultListenAddr = "127.0.0.1:5000"

	// ChatPath is the route of the chat exchange on the backend.
	ChatPath = "/chat"
)

// Transcript strings
const (
	// PendingText is shown while an exchange is in flight.
	PendingText = "Thinking..."

	// FailurePrefix precedes the description of a failed exchange.
	FailurePrefix = "Sorry, something went wrong: "
)

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "wikichat/0.1",
	}
}
