package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrInvalidInput marks empty or unreadable document/clause text. Fatal
	// for the current document, skipped in batch mode.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFitted marks use of the classifier before training or loading.
	// Fatal for the whole run.
	ErrNotFitted = errors.New("classifier is not fitted")

	// ErrExternalService marks a failed language-model call. Recovered via
	// retry; exhausted retries degrade to field-extraction-disabled.
	ErrExternalService = errors.New("external service error")

	// ErrMalformedResponse marks an extraction response that cannot be parsed
	// into field/value structure. Treated as zero fields returned.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrPersistence marks a model artifact or result store failure.
	ErrPersistence = errors.New("persistence error")

	ErrNotFound = errors.New("resource not found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError attaches a sentinel to an underlying cause so callers can match
// either with errors.Is.
func WrapError(sentinel, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
