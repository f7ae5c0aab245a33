package textract

import (
	"errors"
	"fmt"
)

// Common artifact parsing errors
var (
	// ErrInvalidArtifact is returned when an artifact that should be JSON
	// cannot be decoded at all.
	ErrInvalidArtifact = errors.New("malformed results artifact")

	// ErrSchemaViolation is returned when a text items file decodes as JSON
	// but does not match the items schema.
	ErrSchemaViolation = errors.New("results file does not match the text items schema")

	// ErrUnknownFormat is returned when a file matches none of the saved
	// artifact shapes.
	ErrUnknownFormat = errors.New("unrecognized results file format")

	// ErrNoTextData is returned when a legacy log yields no text items,
	// which in practice means the wrong file was supplied.
	ErrNoTextData = errors.New("results file contains no text items")
)

// ParseError wraps errors with additional context about which parsing
// operation failed.
type ParseError struct {
	// Op is the operation that failed (e.g., "ParseItems", "Load").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("textract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("textract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewParseError creates a new ParseError with the specified operation and
// underlying error.
func NewParseError(op string, err error, details string) *ParseError {
	return &ParseError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
