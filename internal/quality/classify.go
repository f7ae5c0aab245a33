package quality

// ClassifyQuality maps a confidence summary to a quality band. Rules are
// evaluated top-down; the first match wins.
func ClassifyQuality(stats ConfidenceStatistics) string {
	avg := stats.AverageConfidence
	median := stats.MedianConfidence
	std := stats.StdConfidence

	switch {
	case avg > 98 && median > 95 && std < 2.0:
		return QualityExcellent
	case avg > 95 && median > 90 && std < 5.0:
		return QualityGood
	case avg > 90 && median > 85:
		return QualityFair
	default:
		return QualityPoor
	}
}

// LikelyBlurry reports whether the confidence summary alone suggests a blurry
// source image. Any single rule firing is enough. The cutoffs are tuned
// separately from the quality bands even where they overlap; keep the two
// classifiers independent.
func LikelyBlurry(stats ConfidenceStatistics) bool {
	switch {
	case stats.MedianConfidence < 80.0:
		return true
	case stats.AverageConfidence < 75.0:
		return true
	case stats.LowConfidencePercentage > 50.0:
		return true
	case stats.StdConfidence > 20.0 && stats.MedianConfidence < 85.0:
		return true
	default:
		return false
	}
}

// analyzeStatistics builds the statistics half of a report from a summary.
func analyzeStatistics(stats ConfidenceStatistics) StatisticsAnalysis {
	return StatisticsAnalysis{
		ConfidenceStatistics: stats,
		LikelyBlurry:         LikelyBlurry(stats),
		QualityAssessment:    ClassifyQuality(stats),
	}
}
