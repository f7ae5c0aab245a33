package quality

import (
	"errors"
	"fmt"
)

// Common assessment errors
var (
	// ErrNoObservations is returned when an assessment is requested for an
	// empty observation list. Statistics over zero items are undefined, so
	// callers must treat this as "insufficient data" rather than poor quality.
	ErrNoObservations = errors.New("no confidence observations provided")

	// ErrNegativeSharpness is returned when a sharpness score below zero is
	// supplied. Laplacian variance is non-negative, so a negative score means
	// the upstream tool misbehaved.
	ErrNegativeSharpness = errors.New("sharpness score must not be negative")

	// ErrConfidenceOutOfRange is returned when a classification confidence
	// falls outside [0, 1]. Out-of-range values are rejected, never clamped.
	ErrConfidenceOutOfRange = errors.New("classification confidence outside the [0, 1] range")
)

// AssessmentError wraps errors with additional context about the quality
// assessment failure.
type AssessmentError struct {
	// Op is the operation that failed (e.g., "ComputeStatistics", "AssessWithSharpness").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *AssessmentError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("quality: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("quality: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AssessmentError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *AssessmentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAssessmentError creates a new AssessmentError with the specified operation
// and underlying error.
func NewAssessmentError(op string, err error, details string) *AssessmentError {
	return &AssessmentError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapAssessmentError wraps an error as an AssessmentError if it isn't already one.
func WrapAssessmentError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var assessErr *AssessmentError
	if errors.As(err, &assessErr) {
		return err // Already wrapped
	}

	return NewAssessmentError(op, err, details)
}
