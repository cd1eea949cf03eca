package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies the failures the harvester pipeline can produce
type ErrorType string

const (
	// ErrorTypeInvalidArgument marks an illegal callback/mode combination,
	// rejected before any scrolling begins
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeSurface marks a failure talking to the rendering surface
	ErrorTypeSurface ErrorType = "surface"
	// ErrorTypeExport marks a failure writing the result artifact
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeAuth marks a credential storage or retrieval failure
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeConfig marks an invalid configuration
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a typed pipeline error
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, message string, cause error) *Error {
	return &Error{Type: errorType, Message: message, Cause: cause}
}

// InvalidArgument creates an invalid_argument error
func InvalidArgument(format string, args ...interface{}) *Error {
	return Newf(ErrorTypeInvalidArgument, format, args...)
}

// IsType reports whether err is (or wraps) an Error of the given type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// IsRetryable reports whether an error type is worth retrying.
// Surface errors are usually transient (navigation races, slow DOM);
// everything else won't change on a second attempt.
func IsRetryable(errorType ErrorType) bool {
	return errorType == ErrorTypeSurface
}
