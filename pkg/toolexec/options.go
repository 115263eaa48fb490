package toolexec

import "time"

// ExecutorOption is a function that configures an executorConfig.
type ExecutorOption func(*executorConfig)

// WithTimeout sets the default timeout for tool execution.
// If the context passed to Execute does not have a deadline, this timeout
// will be applied. A zero or negative timeout disables the default timeout.
//
// Default: 30 seconds
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(c *executorConfig) {
		c.timeout = timeout
	}
}

// WithMaxConcurrent sets the maximum number of calls ExecuteMany runs at
// once. n <= 0 means unlimited.
//
// Default: 1
func WithMaxConcurrent(n int) ExecutorOption {
	return func(c *executorConfig) {
		c.maxConcurrent = n
	}
}

// WithRecoverPanics sets whether panics in a tool are converted to PanicError.
//
// Default: true
func WithRecoverPanics(enabled bool) ExecutorOption {
	return func(c *executorConfig) {
		c.recoverPanics = enabled
	}
}

// WithMiddleware appends middlewares to the chain. The first middleware is
// the outermost wrapper.
func WithMiddleware(mw ...Middleware) ExecutorOption {
	return func(c *executorConfig) {
		c.middlewares = append(c.middlewares, mw...)
	}
}
