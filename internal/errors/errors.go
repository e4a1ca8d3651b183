// Package errors provides error code definitions shared across the sync core.
package errors

import "fmt"

// ErrorCode represents a unique error code that can be bridged to the UI layer.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Database errors
	ErrDatabase ErrorCode = "DATABASE_ERROR"

	// Remote API errors
	ErrRemote         ErrorCode = "REMOTE_ERROR"
	ErrRemoteNotFound ErrorCode = "REMOTE_NOT_FOUND"
	ErrRemoteTimeout  ErrorCode = "REMOTE_TIMEOUT"

	// Sync errors
	ErrSyncNotConfigured       ErrorCode = "SYNC_NOT_CONFIGURED"
	ErrSyncInProgress          ErrorCode = "SYNC_IN_PROGRESS"
	ErrRetryLimitExceeded      ErrorCode = "RETRY_LIMIT_EXCEEDED"
	ErrEmptyQueue              ErrorCode = "EMPTY_QUEUE"
	ErrIncompleteResolution    ErrorCode = "INCOMPLETE_RESOLUTION"
	ErrUnknownResolutionSource ErrorCode = "UNKNOWN_RESOLUTION_SOURCE"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the error code for err, or ErrInternal for plain errors.
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
