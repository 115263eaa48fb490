package toolexec

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ToolFunc is the function signature for tool execution.
type ToolFunc func(ctx context.Context, toolName string, input *Input) (*Output, error)

// Middleware wraps tool execution to add cross-cutting concerns.
// For middlewares [A, B, C] execution flows as:
// A.before -> B.before -> C.before -> tool -> C.after -> B.after -> A.after
type Middleware func(next ToolFunc) ToolFunc

// Chain applies middlewares to fn, the first being the outermost.
func Chain(fn ToolFunc, middlewares ...Middleware) ToolFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

// LoggingMiddleware logs every call at debug level and failures at warn.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next ToolFunc) ToolFunc {
		return func(ctx context.Context, toolName string, input *Input) (*Output, error) {
			start := time.Now()
			output, err := next(ctx, toolName, input)
			fields := []zap.Field{
				zap.String("tool", toolName),
				zap.String("args", input.Raw),
				zap.Duration("elapsed", time.Since(start)),
			}
			if err != nil {
				logger.Warn("tool call failed", append(fields, zap.Error(err))...)
				return output, err
			}
			for k, v := range output.Metadata {
				fields = append(fields, zap.String(k, v))
			}
			logger.Debug("tool call", fields...)
			return output, err
		}
	}
}
