package quality

import "fmt"

// SharpnessThresholds configures how a laplacian variance score maps to a
// sharpness label: blurry below BlurryBelow, sharp from SharpFrom upward,
// moderate in between. The values are calibrated by the external image tool,
// so callers provide them rather than the engine hard-coding one set.
type SharpnessThresholds struct {
	BlurryBelow float64
	SharpFrom   float64
}

// DefaultSharpnessThresholds returns the cutoffs the external laplacian tool
// ships with (blurry below 100, sharp from 200).
func DefaultSharpnessThresholds() SharpnessThresholds {
	return SharpnessThresholds{BlurryBelow: 100.0, SharpFrom: 200.0}
}

// ClassifySharpness maps a laplacian variance score to a sharpness analysis.
// Sharpness is defined over non-negative reals only; a negative score is
// rejected with ErrNegativeSharpness.
func ClassifySharpness(score float64, t SharpnessThresholds) (SharpnessAnalysis, error) {
	const op = "ClassifySharpness"

	if score < 0 {
		return SharpnessAnalysis{}, NewAssessmentError(op, ErrNegativeSharpness, fmt.Sprintf("score %.2f", score))
	}

	label := SharpnessSharp
	switch {
	case score < t.BlurryBelow:
		label = SharpnessBlurry
	case score < t.SharpFrom:
		label = SharpnessModerate
	}

	return SharpnessAnalysis{
		Method:   MethodLaplacian,
		Score:    score,
		IsBlurry: score < t.BlurryBelow,
		Quality:  label,
	}, nil
}

// NeutralSharpness returns the fixed placeholder used when no sharpness
// signal is available. It is not derived from ClassifySharpness: a score of
// zero would classify as blurry, while an absent signal must stay neutral.
func NeutralSharpness() SharpnessAnalysis {
	return SharpnessAnalysis{
		Method:   MethodLaplacian,
		Score:    0.0,
		IsBlurry: false,
		Quality:  SharpnessSharp,
	}
}
