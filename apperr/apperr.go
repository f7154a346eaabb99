package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeInternal    = "internal"
	CodeConfig      = "config"
	CodeIntegration = "integration"
)

// Error represents a structured error raised while producing headers.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// New creates a new Error.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Config reports a missing or unusable configuration value.
func Config(message string, cause error) *Error {
	return New(CodeConfig, message, cause)
}

// Integration reports a failing collaborator such as the header renderer.
func Integration(message string, cause error) *Error {
	return New(CodeIntegration, message, cause)
}

// Internal reports an unexpected failure.
func Internal(message string, cause error) *Error {
	return New(CodeInternal, message, cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

// Unwrap returns the root cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// As extracts an *Error if present.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) string {
	if appErr := As(err); appErr != nil {
		return appErr.Code
	}
	return CodeInternal
}
