// Package quality assesses scanned-document quality from per-line OCR
// confidence scores and an optional image sharpness signal.
//
// Signals:
//   - Confidence statistics over the recognized text (always present).
//   - A laplacian variance score from the image-analysis collaborator
//     (optional; a neutral placeholder stands in when it is absent).
//
// The engine is pure: every assessment is computed from its arguments alone.
// It reads no environment, performs no I/O and keeps no state between calls,
// so a single Assessor may be shared by concurrent callers. Gathering the
// observations, timeouts and any persistence belong to the caller.
//
// Limitations:
//   - Confidence values are taken as-is; the conventional range is [0, 100]
//     but the engine does not enforce it.
//   - The sharpness thresholds are external-tool calibration values, not
//     measured properties; see SharpnessThresholds.
package quality

import (
	"docqc/internal/logger"
	"docqc/pkg/models"
	"github.com/rs/zerolog"
)

// Assessor runs complete quality assessments. The zero value is not usable;
// create one with NewAssessor or NewAssessorWithThresholds.
type Assessor struct {
	thresholds SharpnessThresholds
	log        zerolog.Logger
}

// NewAssessor creates an assessor with the default sharpness thresholds.
func NewAssessor() *Assessor {
	return NewAssessorWithThresholds(DefaultSharpnessThresholds())
}

// NewAssessorWithThresholds creates an assessor with caller-provided
// sharpness cutoffs.
func NewAssessorWithThresholds(t SharpnessThresholds) *Assessor {
	return &Assessor{
		thresholds: t,
		log:        logger.WithComponent("quality-assessor"),
	}
}

// Assess produces a report from the observations alone. The sharpness block
// carries the neutral placeholder so downstream consumers always see a fully
// populated report.
func (a *Assessor) Assess(obs []models.Observation) (*Report, error) {
	return a.assess(obs, NeutralSharpness(), "absent")
}

// AssessWithSharpness produces a report that includes the classification of
// the given sharpness score under the assessor's thresholds.
func (a *Assessor) AssessWithSharpness(obs []models.Observation, score float64) (*Report, error) {
	sharp, err := ClassifySharpness(score, a.thresholds)
	if err != nil {
		return nil, err
	}
	return a.assess(obs, sharp, "score")
}

// AssessWithSharpnessAnalysis produces a report around a sharpness verdict
// that was computed elsewhere, passing the triple through verbatim.
func (a *Assessor) AssessWithSharpnessAnalysis(obs []models.Observation, sharp SharpnessAnalysis) (*Report, error) {
	return a.assess(obs, sharp, "saved")
}

func (a *Assessor) assess(obs []models.Observation, sharp SharpnessAnalysis, sharpnessSource string) (*Report, error) {
	stats, err := ComputeStatistics(obs)
	if err != nil {
		return nil, err
	}

	analysis := analyzeStatistics(*stats)
	report := &Report{
		Statistics: analysis,
		Sharpness:  sharp,
		Overall:    Combine(analysis, sharp),
	}

	a.log.Debug().
		Int("total_items", stats.TotalItems).
		Float64("median_confidence", stats.MedianConfidence).
		Str("quality_assessment", analysis.QualityAssessment).
		Str("sharpness_source", sharpnessSource).
		Bool("is_blurry", report.Overall.IsBlurry).
		Str("confidence_level", report.Overall.ConfidenceLevel).
		Msg("Quality assessment completed")

	return report, nil
}
