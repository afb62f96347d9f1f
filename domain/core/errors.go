package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrTargetNotFound  = fmt.Errorf("%w: target", ErrNotFound)
	ErrCatalogNotFound = fmt.Errorf("%w: catalog", ErrNotFound)
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)

	// Validation errors
	ErrEmptySeries      = errors.New("empty series")
	ErrNonPositive      = errors.New("value must be positive")
	ErrLengthMismatch   = errors.New("series column lengths differ")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Decoding errors
	ErrBadHeader   = errors.New("malformed header")
	ErrBadColumn   = errors.New("missing or malformed column")
	ErrBadAperture = errors.New("aperture mask does not match pixel stamp")
)

// Error constructors with context

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewNonPositiveError(field string, value float64) error {
	return fmt.Errorf("%w: %s = %g", ErrNonPositive, field, value)
}

// Error checking helpers

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
