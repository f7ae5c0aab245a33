package quality

// Quality bands produced by ClassifyQuality.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// Sharpness labels produced by ClassifySharpness.
const (
	SharpnessSharp    = "sharp"
	SharpnessModerate = "moderate"
	SharpnessBlurry   = "blurry"
)

// Confidence levels produced by the assessment combiner.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

const (
	// MethodLaplacian identifies how the sharpness score was measured.
	MethodLaplacian = "laplacian"

	// IndicatorLaplacian and IndicatorTextract name the signals that can
	// independently flag a document as blurry.
	IndicatorLaplacian = "laplacian"
	IndicatorTextract  = "textract"
)

// LowConfidenceThreshold is the cutoff below which an observation counts as
// low confidence.
const LowConfidenceThreshold = 85.0

// ConfidenceStatistics summarizes the confidence distribution of the
// observations. The JSON field names match the saved analysis artifacts and
// are a compatibility contract.
type ConfidenceStatistics struct {
	// TotalItems is the number of observations analyzed.
	TotalItems int `json:"total_items"`

	// MinConfidence and MaxConfidence are the observed extrema.
	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`

	// MedianConfidence is the median of the value-sorted confidences; even
	// counts average the two middle values.
	MedianConfidence float64 `json:"median_confidence"`

	// AverageConfidence is the arithmetic mean.
	AverageConfidence float64 `json:"average_confidence"`

	// StdConfidence is the population standard deviation (divide by N),
	// 0.0 when TotalItems <= 1.
	StdConfidence float64 `json:"std_confidence"`

	// LowConfidenceCount counts observations strictly below
	// LowConfidenceThreshold; LowConfidencePercentage is its share of
	// TotalItems in percent.
	LowConfidenceCount      int     `json:"low_confidence_count"`
	LowConfidencePercentage float64 `json:"low_confidence_percentage"`
}

// StatisticsAnalysis is the statistics-based half of a report: the raw
// summary plus the two labels derived from it.
type StatisticsAnalysis struct {
	ConfidenceStatistics

	LikelyBlurry      bool   `json:"likely_blurry"`      // Blur verdict from the confidence distribution alone
	QualityAssessment string `json:"quality_assessment"` // One of the Quality* bands
}

// SharpnessAnalysis is the image-domain half of a report. When no sharpness
// signal was available it carries the neutral placeholder from
// NeutralSharpness.
type SharpnessAnalysis struct {
	Method   string  `json:"method"`    // Measurement method, MethodLaplacian
	Score    float64 `json:"score"`     // Laplacian variance, higher = sharper
	IsBlurry bool    `json:"is_blurry"` // Blur verdict from the score alone
	Quality  string  `json:"quality"`   // One of the Sharpness* labels
}

// OverallAssessment merges both signals into the final verdict.
type OverallAssessment struct {
	// IsBlurry is true when any signal flagged blur.
	IsBlurry bool `json:"is_blurry"`

	// BlurIndicators lists the signals that flagged blur, IndicatorLaplacian
	// before IndicatorTextract. Empty (never null) when the document is clear.
	BlurIndicators []string `json:"blur_indicators"`

	// ConfidenceLevel grades how much the verdict can be trusted, derived
	// from the confidence statistics alone.
	ConfidenceLevel string `json:"confidence_level"`
}

// Report is the complete quality assessment for one document. The top-level
// JSON keys reproduce the saved analysis artifact format, so existing
// consumers of those files keep working.
type Report struct {
	Statistics StatisticsAnalysis `json:"textract_analysis"`
	Sharpness  SharpnessAnalysis  `json:"laplacian"`
	Overall    OverallAssessment  `json:"overall_assessment"`
}
