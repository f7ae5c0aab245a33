package quality

// Combine merges the statistics and sharpness analyses into the overall
// assessment. Indicators are collected laplacian-first so the serialized
// list is stable.
func Combine(stats StatisticsAnalysis, sharp SharpnessAnalysis) OverallAssessment {
	// Non-nil so an empty list serializes as [], matching the artifact format.
	indicators := []string{}
	if sharp.IsBlurry {
		indicators = append(indicators, IndicatorLaplacian)
	}
	if stats.LikelyBlurry {
		indicators = append(indicators, IndicatorTextract)
	}

	return OverallAssessment{
		IsBlurry:        len(indicators) > 0,
		BlurIndicators:  indicators,
		ConfidenceLevel: assessmentConfidence(stats.ConfidenceStatistics),
	}
}

// assessmentConfidence grades how much the overall verdict can be trusted.
// Only the confidence statistics feed into it; the sharpness signal does not.
// The first two cases are alternative routes to "high".
func assessmentConfidence(stats ConfidenceStatistics) string {
	median := stats.MedianConfidence
	avg := stats.AverageConfidence
	lowPct := stats.LowConfidencePercentage

	switch {
	case median > 95 && avg > 90 && lowPct < 20:
		return LevelHigh
	case median > 90 && avg > 85 && lowPct < 35:
		return LevelHigh
	case median > 85 && avg > 80 && lowPct < 50:
		return LevelMedium
	default:
		return LevelLow
	}
}
