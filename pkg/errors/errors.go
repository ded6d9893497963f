package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeStorage ErrorType = "storage"
	ErrorTypeArchive ErrorType = "archive"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeRender  ErrorType = "render"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is an application error with type information. Err, when set, is the
// underlying cause and is reachable through errors.Is and errors.As.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without a cause.
func New(t ErrorType, format string, args ...any) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around err. It returns nil when err is nil.
func Wrap(t ErrorType, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// TypeOf returns the type of the first *Error in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeArchive, ErrorTypeStorage:
		// SQLite busy/locked and transient filesystem errors clear up.
		return true
	case ErrorTypeInput, ErrorTypeConfig, ErrorTypeRender:
		return false
	default:
		return false
	}
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch TypeOf(err) {
	case ErrorTypeInput:
		return 2
	case ErrorTypeConfig:
		return 3
	default:
		return 1
	}
}
