package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every entity lookup failure (maps to HTTP 404).
var ErrNotFound = errors.New("not found")

// Sentinel errors for entity lookups.
var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrUserAdminNotFound   = fmt.Errorf("user admin %w", ErrNotFound)
	ErrProjectNotFound     = fmt.Errorf("project %w", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("task %w", ErrNotFound)
	ErrProgressNotFound    = fmt.Errorf("progress project %w", ErrNotFound)
	ErrAutoTaskNotFound    = fmt.Errorf("auto task %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// ErrReferenceNotFound is returned when a write points at a row that does not exist.
	ErrReferenceNotFound = fmt.Errorf("referenced entity %w", ErrNotFound)
)

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrStillReferenced indicates a delete blocked by dependent rows (maps to HTTP 409 Conflict).
var ErrStillReferenced = fmt.Errorf("entity is still referenced: %w", ErrDuplicateKey)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// Auth errors.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError describes a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + " " + e.Message
}

// Is reports ErrValidation as a match so callers can classify without type assertions.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ErrMissingField returns a validation error for an absent required field.
func ErrMissingField(field string) error {
	return NewValidationError(field, "is required")
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return NewValidationError(field, fmt.Sprintf("exceeds maximum length of %d", maxLen))
}
