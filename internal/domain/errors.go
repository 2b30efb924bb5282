// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request fails validation.
	// Every ValidationError matches it with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed for the active store.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyName is returned when a user or task has no name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyEmail is returned when a user has no email.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidDeadline is returned when a task deadline is missing or does not
	// parse to a valid instant.
	ErrInvalidDeadline = errors.New("invalid deadline")
)

// ValidationError carries a client-facing message for a failed check along
// with the sentinel describing which check failed.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. err is the
// sentinel callers can match with errors.Is; it may be nil.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
