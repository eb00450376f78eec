package llmreview

import (
	"errors"
	"fmt"
)

var (
	ErrClientNotAvailable = errors.New("llm client not available")
	ErrTimeout            = errors.New("llm request timeout")
	ErrMaxRetriesExceeded = errors.New("llm max retries exceeded")
	ErrInvalidResponse    = errors.New("llm response did not match the expected schema")
)

// ErrorClass buckets a failure by how the caller should react to it, mirroring
// the teacher's llm.ClientError.Retryable flag but with the explicit classes
// spec §4.4 calls out (timeout/network/rate_limit/auth/unknown) so retry
// policy reads directly off the class instead of a single boolean.
type ErrorClass string

const (
	ClassTimeout   ErrorClass = "timeout"
	ClassNetwork   ErrorClass = "network"
	ClassAuth      ErrorClass = "auth"
	ClassRateLimit ErrorClass = "rate_limit"
	ClassServer    ErrorClass = "server"
	ClassUnknown   ErrorClass = "unknown"
)

// Retryable reports whether a failure in this class should be retried.
// Auth failures (401/403) are never retryable; everything transient is.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ClassTimeout, ClassNetwork, ClassRateLimit, ClassServer:
		return true
	default:
		return false
	}
}

// ClientError represents a classified failure from a Client.
type ClientError struct {
	Client     string
	Operation  string
	Message    string
	Class      ErrorClass
	StatusCode int
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s.%s] %s: %v", e.Client, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s.%s] %s", e.Client, e.Operation, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func NewClientError(client, operation, message string, class ErrorClass, statusCode int, err error) *ClientError {
	return &ClientError{
		Client:     client,
		Operation:  operation,
		Message:    message,
		Class:      class,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsRetryable reports whether err (if a *ClientError) is classified as
// retryable.
func IsRetryable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Class.Retryable()
	}
	return false
}

// ClassifyHTTPStatus maps an HTTP status code to an ErrorClass per spec
// §4.4: 401/403 are auth (non-retryable), 429 is rate_limit, 5xx is server,
// everything else unknown.
func ClassifyHTTPStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ClassAuth
	case statusCode == 429:
		return ClassRateLimit
	case statusCode >= 500 && statusCode < 600:
		return ClassServer
	default:
		return ClassUnknown
	}
}
