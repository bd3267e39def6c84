package life

import (
	"errors"
	"fmt"
)

// Domain errors for grid and snapshot operations.
var (
	// ErrInvalidDimensions indicates a grid requested with height or width below 1.
	ErrInvalidDimensions = errors.New("life: invalid grid dimensions")

	// ErrMalformedSnapshot indicates a snapshot whose shape does not match its dimensions.
	ErrMalformedSnapshot = errors.New("life: malformed snapshot")

	// ErrOutOfBounds indicates a cell coordinate outside the grid.
	ErrOutOfBounds = errors.New("life: cell out of bounds")
)

// ValidationError describes why a snapshot was rejected.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedSnapshot, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedSnapshot, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedSnapshot. A decoding cause, when
// present, is reachable through errors.As.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedSnapshot, e.Cause}
	}
	return []error{ErrMalformedSnapshot}
}

// ConfigurationError reports a grid construction with invalid dimensions.
type ConfigurationError struct {
	Height int
	Width  int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %dx%d (height and width must be at least 1)", ErrInvalidDimensions, e.Height, e.Width)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidDimensions
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
