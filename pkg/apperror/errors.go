package apperror

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors shared across services and handlers
var (
	ErrEmptySale    = errors.New("sale has no valid line items")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("resource already exists")
)

// NotFoundError means the record does not exist or belongs to another owner.
// Both cases are reported the same way so callers cannot probe foreign IDs.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NotFound builds a NotFoundError for the given resource name
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ValidationError reports malformed or out-of-range input for a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Conflict wraps ErrConflict with a human readable reason
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FromGorm translates gorm.ErrRecordNotFound into a NotFoundError for resource,
// and wraps anything else with the given action for context.
func FromGorm(err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
