package quality

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestCombineIndicators(t *testing.T) {
	tests := []struct {
		statsBlurry bool
		sharpBlurry bool
		want        []string
	}{
		{false, false, []string{}},
		{true, false, []string{IndicatorTextract}},
		{false, true, []string{IndicatorLaplacian}},
		{true, true, []string{IndicatorLaplacian, IndicatorTextract}},
	}

	for _, tt := range tests {
		stats := StatisticsAnalysis{LikelyBlurry: tt.statsBlurry}
		sharp := SharpnessAnalysis{IsBlurry: tt.sharpBlurry}
		got := Combine(stats, sharp)

		if !reflect.DeepEqual(got.BlurIndicators, tt.want) {
			t.Errorf("Combine(stats=%v, sharp=%v).BlurIndicators = %v, want %v",
				tt.statsBlurry, tt.sharpBlurry, got.BlurIndicators, tt.want)
		}
		wantBlurry := len(tt.want) > 0
		if got.IsBlurry != wantBlurry {
			t.Errorf("Combine(stats=%v, sharp=%v).IsBlurry = %v, want %v",
				tt.statsBlurry, tt.sharpBlurry, got.IsBlurry, wantBlurry)
		}
	}
}

func TestEmptyIndicatorsSerializeAsList(t *testing.T) {
	overall := Combine(StatisticsAnalysis{}, SharpnessAnalysis{})

	data, err := json.Marshal(overall)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), `"blur_indicators":[]`) {
		t.Errorf("empty blur_indicators must serialize as [], got %s", data)
	}
}

func TestAssessmentConfidenceLevels(t *testing.T) {
	tests := []struct {
		median  float64
		average float64
		lowPct  float64
		want    string
	}{
		{96.0, 91.0, 10.0, LevelHigh}, // first high band
		{92.0, 86.0, 30.0, LevelHigh}, // second high band
		{91.0, 86.0, 34.9, LevelHigh},
		{91.0, 86.0, 35.0, LevelMedium}, // low% exactly 35 drops to the medium band
		{86.0, 81.0, 49.9, LevelMedium},
		{85.0, 95.0, 0.0, LevelLow}, // median exactly 85 misses every band
		{96.0, 95.0, 60.0, LevelLow},
		{96.0, 80.0, 10.0, LevelLow},
		{34.0, 34.0, 100.0, LevelLow},
	}

	for _, tt := range tests {
		stats := ConfidenceStatistics{
			MedianConfidence:        tt.median,
			AverageConfidence:       tt.average,
			LowConfidencePercentage: tt.lowPct,
		}
		got := assessmentConfidence(stats)
		if got != tt.want {
			t.Errorf("assessmentConfidence(median=%.2f avg=%.2f low%%=%.1f) = %q, want %q",
				tt.median, tt.average, tt.lowPct, got, tt.want)
		}
	}
}

func TestCombineUsesStatisticsForConfidenceLevel(t *testing.T) {
	// The sharpness signal must not influence the confidence level.
	stats := StatisticsAnalysis{
		ConfidenceStatistics: ConfidenceStatistics{
			MedianConfidence:        96.0,
			AverageConfidence:       91.0,
			LowConfidencePercentage: 10.0,
		},
	}

	clear := Combine(stats, SharpnessAnalysis{IsBlurry: false})
	blurry := Combine(stats, SharpnessAnalysis{IsBlurry: true})

	if clear.ConfidenceLevel != LevelHigh || blurry.ConfidenceLevel != LevelHigh {
		t.Errorf("ConfidenceLevel = %q/%q, want %q for both",
			clear.ConfidenceLevel, blurry.ConfidenceLevel, LevelHigh)
	}
}
