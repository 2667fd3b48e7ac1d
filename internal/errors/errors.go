package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound      ErrorType = "NOT_FOUND"
	ErrInvalidInput  ErrorType = "INVALID_INPUT"
	ErrInternal      ErrorType = "INTERNAL"
	ErrUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrUpstream      ErrorType = "UPSTREAM"
	ErrNotConfigured ErrorType = "NOT_CONFIGURED"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// TypeOf returns the type of the outermost AppError in the chain, or an empty
// ErrorType when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrNotFound
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return TypeOf(err) == ErrInvalidInput
}

// IsUnauthorized checks if the error is an authentication error
func IsUnauthorized(err error) bool {
	return TypeOf(err) == ErrUnauthorized
}

// IsNotConfigured checks if the error reports a missing server-side setting
func IsNotConfigured(err error) bool {
	return TypeOf(err) == ErrNotConfigured
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewUnauthorizedError creates a new authentication error. It is fatal to the
// request and never retried.
func NewUnauthorizedError(message string, err error) *AppError {
	return New(ErrUnauthorized, message, err)
}

// NewUpstreamError wraps an upstream failure that blocks the minimal response
func NewUpstreamError(message string, err error) *AppError {
	return New(ErrUpstream, message, err)
}

// NewNotConfiguredError creates a new not configured error
func NewNotConfiguredError(message string) *AppError {
	return New(ErrNotConfigured, message, nil)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}
