package toolexec

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrToolNotFound is returned when a requested tool is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is returned when registering a name twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrNilTool is returned when attempting to register a nil tool.
	ErrNilTool = errors.New("cannot register nil tool")

	// ErrExecutionFailed is returned when tool execution fails.
	ErrExecutionFailed = errors.New("tool execution failed")

	// ErrContextCancelled is returned when the context is cancelled during execution.
	ErrContextCancelled = errors.New("execution cancelled")

	// ErrPanicRecovered is returned when a panic is recovered during execution.
	ErrPanicRecovered = errors.New("panic recovered during execution")

	// ErrTimeout is returned when execution times out.
	ErrTimeout = errors.New("execution timed out")
)

// ToolError carries the tool and operation an error happened in.
type ToolError struct {
	ToolName  string
	Operation string
	Message   string
	// Kind is the sentinel this error matches with errors.Is
	Kind  error
	Cause error
}

func (e *ToolError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.ToolName == "" {
		return fmt.Sprintf("%s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("%s %q: %s", e.Operation, e.ToolName, msg)
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Is matches the error's kind.
func (e *ToolError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// NewToolNotFoundError creates the error for an unregistered tool name.
func NewToolNotFoundError(toolName string) *ToolError {
	return &ToolError{
		ToolName:  toolName,
		Operation: "get tool",
		Message:   "tool is not registered",
		Kind:      ErrToolNotFound,
	}
}

// NewDuplicateToolError creates the error for a second registration of a name.
func NewDuplicateToolError(toolName string) *ToolError {
	return &ToolError{
		ToolName:  toolName,
		Operation: "register",
		Message:   "tool is already registered",
		Kind:      ErrDuplicateTool,
	}
}

// NewExecutionError wraps an error returned by a tool.
func NewExecutionError(toolName string, cause error) *ToolError {
	return &ToolError{
		ToolName:  toolName,
		Operation: "execute",
		Kind:      ErrExecutionFailed,
		Cause:     cause,
	}
}

// NewTimeoutError creates the error for a call that exceeded its deadline.
func NewTimeoutError(toolName string, timeout time.Duration) *ToolError {
	return &ToolError{
		ToolName:  toolName,
		Operation: "execute",
		Message:   fmt.Sprintf("timed out after %s", timeout),
		Kind:      ErrTimeout,
	}
}

// NewCancelledError creates the error for a call whose context was cancelled.
func NewCancelledError(toolName string) *ToolError {
	return &ToolError{
		ToolName:  toolName,
		Operation: "execute",
		Kind:      ErrContextCancelled,
	}
}

// NewPanicError creates the error for a recovered panic.
func NewPanicError(toolName string, value any, stack string) *PanicError {
	return &PanicError{
		ToolError: ToolError{
			ToolName:  toolName,
			Operation: "execute",
			Message:   fmt.Sprintf("panic: %v", value),
			Kind:      ErrPanicRecovered,
		},
		Value: value,
		Stack: stack,
	}
}

// PanicError is a recovered panic with its stack trace.
type PanicError struct {
	ToolError
	Value any
	Stack string
}

// IsToolNotFound reports whether err is a ToolNotFound error.
func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
