package toolexec

import (
	"context"

	"github.com/tidwall/gjson"
)

// Tool defines the interface that all executable tools must implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description tells the model when the tool is useful.
	Description() string

	// Parameters returns the JSON Schema object describing the arguments.
	Parameters() map[string]any

	// Execute runs the tool. Implementations must honor ctx cancellation.
	Execute(ctx context.Context, input *Input) (*Output, error)
}

// Input represents the arguments passed to a tool
type Input struct {
	// Params holds the decoded arguments
	Params map[string]any

	// Raw is the arguments exactly as the model produced them
	Raw string
}

// NewInput creates a new Input with initialized params.
func NewInput() *Input {
	return &Input{Params: make(map[string]any)}
}

// ParseInput decodes a JSON arguments object. Arguments that are not a JSON
// object yield an Input without params so the tool can report what is missing.
func ParseInput(args string) *Input {
	input := NewInput()
	input.Raw = args

	if !gjson.Valid(args) {
		return input
	}
	parsed := gjson.Parse(args)
	if !parsed.IsObject() {
		return input
	}
	if m, ok := parsed.Value().(map[string]any); ok {
		input.Params = m
	}
	return input
}

// WithParam adds a parameter and returns the Input for chaining.
func (i *Input) WithParam(key string, value any) *Input {
	if i.Params == nil {
		i.Params = make(map[string]any)
	}
	i.Params[key] = value
	return i
}

// GetParam retrieves a parameter by key.
func (i *Input) GetParam(key string) any {
	if i == nil || i.Params == nil {
		return nil
	}
	return i.Params[key]
}

// GetParamString retrieves a string parameter by key.
// Returns empty string if the parameter does not exist or is not a string.
func (i *Input) GetParamString(key string) string {
	if s, ok := i.GetParam(key).(string); ok {
		return s
	}
	return ""
}

// Output represents the result of a tool execution.
type Output struct {
	// Text is what is reported back to the model
	Text string

	// Metadata holds additional context (e.g. result counts) for logging
	Metadata map[string]string
}

// NewOutput creates an Output carrying text.
func NewOutput(text string) *Output {
	return &Output{Text: text, Metadata: make(map[string]string)}
}

// WithMetadata adds a metadata entry and returns the Output for chaining.
func (o *Output) WithMetadata(key, value string) *Output {
	if o.Metadata == nil {
		o.Metadata = make(map[string]string)
	}
	o.Metadata[key] = value
	return o
}

// ToolInfo describes a registered tool to a model.
type ToolInfo struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolInfoFromTool creates a ToolInfo from a Tool interface.
func ToolInfoFromTool(t Tool) ToolInfo {
	return ToolInfo{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
