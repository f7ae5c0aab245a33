package quality

import (
	"sort"

	"docqc/pkg/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ComputeStatistics reduces the observations to their confidence summary.
// Only the confidence values are read; the text is ignored here. An empty
// observation list is rejected with ErrNoObservations so that "no text
// detected" surfaces as insufficient data, never as a synthesized poor score.
func ComputeStatistics(obs []models.Observation) (*ConfidenceStatistics, error) {
	const op = "ComputeStatistics"

	if len(obs) == 0 {
		return nil, NewAssessmentError(op, ErrNoObservations, "")
	}

	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Confidence
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	low := 0
	for _, v := range values {
		if v < LowConfidenceThreshold {
			low++
		}
	}

	stats := &ConfidenceStatistics{
		TotalItems:              len(values),
		MinConfidence:           floats.Min(values),
		MaxConfidence:           floats.Max(values),
		MedianConfidence:        medianSorted(sorted),
		AverageConfidence:       stat.Mean(values, nil),
		LowConfidenceCount:      low,
		LowConfidencePercentage: float64(low) / float64(len(values)) * 100,
	}

	// A single value has no spread; the artifact format records 0.0.
	if stats.TotalItems > 1 {
		stats.StdConfidence = stat.PopStdDev(values, nil)
	}

	return stats, nil
}

// medianSorted returns the median of an ascending slice. Even lengths average
// the two middle values.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
