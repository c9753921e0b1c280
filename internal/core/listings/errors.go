package listings

import (
	"errors"
	"fmt"
)

var (
	// ErrListingNotFound indicates the listing id does not reference an existing listing
	ErrListingNotFound = errors.New("listing not found")

	// ErrInvalidSort indicates an unknown sort was requested
	ErrInvalidSort = errors.New("invalid sort: must be one of fresh, popular")
)

// ValidationError represents a validation error on a single request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
