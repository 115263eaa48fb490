package toolexec

import "context"

// MockTool is a mock implementation of the Tool interface for testing.
type MockTool struct {
	name        string
	description string
	executeFunc func(ctx context.Context, input *Input) (*Output, error)
}

// NewMockTool creates a new MockTool with the given name and description.
func NewMockTool(name, description string) *MockTool {
	return &MockTool{name: name, description: description}
}

func (m *MockTool) Name() string        { return m.name }
func (m *MockTool) Description() string { return m.description }

func (m *MockTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (m *MockTool) Execute(ctx context.Context, input *Input) (*Output, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, input)
	}
	return NewOutput("mock executed"), nil
}

// WithExecuteFunc sets a custom execute function for the mock tool.
func (m *MockTool) WithExecuteFunc(fn func(ctx context.Context, input *Input) (*Output, error)) *MockTool {
	m.executeFunc = fn
	return m
}
