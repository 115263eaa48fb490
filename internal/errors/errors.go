// Package errors provides custom error types for the wikichat client and backend.
//
// The chat UI distinguishes exactly one failure kind, "exchange failed". The
// types below exist so diagnostics (verbose output, logs) can say more; the
// user-visible text is always produced by UserMessage.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/diogo/wikichat/internal/models"
)

// Sentinel errors for common cases
var (
	ErrExchangeFailed  = errors.New("exchange failed")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrClientClosed    = errors.New("client is closed")
)

// HTTPError represents a non-2xx response from the chat endpoint
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       string
	// Message is the "error" field of the backend's JSON body, if any
	Message string
}

// Error returns the description shown in the transcript for a bad status.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Is allows comparison with sentinel errors
func (e *HTTPError) Is(target error) bool {
	if target == ErrExchangeFailed {
		return true
	}
	_, ok := target.(*HTTPError)
	return ok
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, endpoint string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
	}
}

// NewHTTPErrorWithBody creates a new HTTPError carrying the response body
func NewHTTPErrorWithBody(statusCode int, endpoint, body, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
		Message:    message,
	}
}

// NetworkError represents a failure to get any response at all
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

// Error returns the underlying error's description
func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Operation)
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrExchangeFailed {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{
		Operation: operation,
		Endpoint:  endpoint,
		Err:       err,
	}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrExchangeFailed {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response body that could not be decoded
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse || target == ErrExchangeFailed {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Describe returns the short description of why an exchange failed.
// HTTP failures yield "HTTP error! status: N"; transport failures yield the
// underlying error's message.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Error()
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}

	return err.Error()
}

// UserMessage returns the transcript text for a failed exchange
func UserMessage(err error) string {
	return models.FailurePrefix + Describe(err)
}

// GetHTTPStatus returns the status code of an HTTPError, or 0
func GetHTTPStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint associated with the error, if any
func GetEndpoint(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the backend's error message (or raw body) for an HTTPError
func GetResponseBody(err error) string {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return ""
	}
	if httpErr.Message != "" {
		return httpErr.Message
	}
	return httpErr.Body
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout, including context deadlines
// and net.Error timeouts wrapped in a NetworkError.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsExchangeError reports whether err is one of the exchange failure types
func IsExchangeError(err error) bool {
	return errors.Is(err, ErrExchangeFailed)
}
