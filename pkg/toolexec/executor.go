package toolexec

import (
	"context"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor defines the interface for executing tools.
type Executor interface {
	// Execute runs a tool synchronously with the given input.
	Execute(ctx context.Context, toolName string, input *Input) (*Output, error)

	// ExecuteMany runs the calls concurrently, bounded by WithMaxConcurrent.
	// Results are in call order; each carries its own error.
	ExecuteMany(ctx context.Context, calls []Call) []*Result
}

// Call is a single tool execution request for ExecuteMany.
type Call struct {
	ToolName string
	Input    *Input
}

// Result is the outcome of one call of ExecuteMany.
type Result struct {
	ToolName string
	Output   *Output
	Error    error
	Duration time.Duration
}

type executorConfig struct {
	timeout       time.Duration
	maxConcurrent int
	recoverPanics bool
	middlewares   []Middleware
}

func defaultConfig() *executorConfig {
	return &executorConfig{
		timeout:       30 * time.Second,
		maxConcurrent: 1,
		recoverPanics: true,
	}
}

type executor struct {
	registry Registry
	config   *executorConfig
	run      ToolFunc
}

// NewExecutor creates a new Executor over registry.
func NewExecutor(registry Registry, opts ...ExecutorOption) Executor {
	if registry == nil {
		registry = NewRegistry()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	e := &executor{registry: registry, config: cfg}
	e.run = Chain(e.invoke, cfg.middlewares...)
	return e
}

// Execute looks up the tool, applies the default timeout when ctx has no
// deadline, and runs it through the middleware chain.
func (e *executor) Execute(ctx context.Context, toolName string, input *Input) (*Output, error) {
	if input == nil {
		input = NewInput()
	}
	if e.config.timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.config.timeout)
			defer cancel()
		}
	}
	return e.run(ctx, toolName, input)
}

// invoke is the innermost ToolFunc of the chain
func (e *executor) invoke(ctx context.Context, toolName string, input *Input) (output *Output, err error) {
	tool, err := e.registry.Get(toolName)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, e.contextError(ctx, toolName)
	}

	if e.config.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				output = nil
				err = NewPanicError(toolName, r, string(debug.Stack()))
			}
		}()
	}

	output, err = tool.Execute(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return nil, e.contextError(ctx, toolName)
		}
		return nil, NewExecutionError(toolName, err)
	}
	if output == nil {
		output = NewOutput("")
	}
	return output, nil
}

func (e *executor) contextError(ctx context.Context, toolName string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return NewTimeoutError(toolName, e.config.timeout)
	}
	return NewCancelledError(toolName)
}

func (e *executor) ExecuteMany(ctx context.Context, calls []Call) []*Result {
	results := make([]*Result, len(calls))

	var g errgroup.Group
	if e.config.maxConcurrent > 0 {
		g.SetLimit(e.config.maxConcurrent)
	}

	for i, call := range calls {
		g.Go(func() error {
			start := time.Now()
			output, err := e.Execute(ctx, call.ToolName, call.Input)
			results[i] = &Result{
				ToolName: call.ToolName,
				Output:   output,
				Error:    err,
				Duration: time.Since(start),
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
