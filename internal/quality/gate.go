package quality

import "fmt"

// ReliabilityBand grades a classifier confidence in [0, 1] into LevelHigh
// (>= 0.7), LevelMedium (>= 0.4) or LevelLow. A value outside [0, 1] signals
// a bug in the upstream classifier and is rejected with
// ErrConfidenceOutOfRange, never clamped.
func ReliabilityBand(score float64) (string, error) {
	const op = "ReliabilityBand"

	if score < 0 || score > 1 {
		return "", NewAssessmentError(op, ErrConfidenceOutOfRange, fmt.Sprintf("score %.2f", score))
	}

	switch {
	case score >= 0.7:
		return LevelHigh, nil
	case score >= 0.4:
		return LevelMedium, nil
	default:
		return LevelLow, nil
	}
}
