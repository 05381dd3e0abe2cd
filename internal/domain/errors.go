package domain

import "fmt"

// ErrorKind classifies step-level failures for display and retry affordances.
type ErrorKind string

const (
	ErrorKindTransport  ErrorKind = "transport"
	ErrorKindServer     ErrorKind = "server"
	ErrorKindValidation ErrorKind = "validation"
)

// Error is a kind-tagged failure surfaced to the UI. Code carries the remote
// status for server errors and is zero otherwise.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Code      int       `json:"code,omitempty"`
	Retryable bool      `json:"retryable"`
	Err       error     `json:"-"`
}

// Error formats the failure for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (code=%d)", e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewTransportError wraps a network-level failure.
func NewTransportError(message string, err error) *Error {
	return &Error{Kind: ErrorKindTransport, Message: message, Retryable: true, Err: err}
}

// NewServerError wraps a remote rejection carrying its status code.
func NewServerError(code int, message string) *Error {
	return &Error{Kind: ErrorKindServer, Message: message, Code: code, Retryable: code >= 500}
}

// NewValidationError reports a local precondition failure.
func NewValidationError(message string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: message}
}
