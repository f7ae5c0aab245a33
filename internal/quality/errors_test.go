package quality

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssessmentErrorFormatting(t *testing.T) {
	withDetails := NewAssessmentError("ReliabilityBand", ErrConfidenceOutOfRange, "score 1.30")
	want := fmt.Sprintf("quality: ReliabilityBand failed: score 1.30: %v", ErrConfidenceOutOfRange)
	if withDetails.Error() != want {
		t.Errorf("Error() = %q, want %q", withDetails.Error(), want)
	}

	bare := NewAssessmentError("ComputeStatistics", ErrNoObservations, "")
	want = fmt.Sprintf("quality: ComputeStatistics failed: %v", ErrNoObservations)
	if bare.Error() != want {
		t.Errorf("Error() = %q, want %q", bare.Error(), want)
	}
}

func TestAssessmentErrorMatching(t *testing.T) {
	err := NewAssessmentError("ComputeStatistics", ErrNoObservations, "")

	if !errors.Is(err, ErrNoObservations) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
	if errors.Is(err, ErrNegativeSharpness) {
		t.Error("errors.Is matched an unrelated sentinel")
	}
	if !errors.Is(errors.Unwrap(err), ErrNoObservations) {
		t.Error("Unwrap should expose the sentinel")
	}
}

func TestWrapAssessmentError(t *testing.T) {
	inner := NewAssessmentError("ComputeStatistics", ErrNoObservations, "")
	if wrapped := WrapAssessmentError("Assess", inner, "outer"); wrapped != error(inner) {
		t.Errorf("WrapAssessmentError re-wrapped an AssessmentError: %v", wrapped)
	}

	if WrapAssessmentError("Assess", nil, "") != nil {
		t.Error("WrapAssessmentError(nil) should stay nil")
	}

	plain := errors.New("plain failure")
	wrapped := WrapAssessmentError("Assess", plain, "")
	var assessErr *AssessmentError
	if !errors.As(wrapped, &assessErr) {
		t.Fatalf("WrapAssessmentError returned %T, want *AssessmentError", wrapped)
	}
	if assessErr.Op != "Assess" {
		t.Errorf("Op = %q, want %q", assessErr.Op, "Assess")
	}
}
