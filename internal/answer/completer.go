// Package answer produces the backend's answers: a fast single-shot summary of
// Wikipedia results, or a tool-using agent loop in thinking mode.
package answer

import "context"

// Role is the author of a conversation message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a function call requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of the conversation sent to the model
type Message struct {
	Role    Role
	Content string
	// ToolCalls is set on assistant messages that requested tools
	ToolCalls []ToolCall
	// ToolCallID is set on tool messages
	ToolCallID string
}

// Tool describes a function the model may call
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object
	Parameters map[string]any
}

// CompletionRequest is one chat completion call
type CompletionRequest struct {
	Model       string
	Temperature float64
	Messages    []Message
	Tools       []Tool
}

// Completion is the model's reply
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Completer abstracts the chat completion API
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
