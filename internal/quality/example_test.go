package quality_test

import (
	"fmt"
	"log"

	"docqc/internal/quality"
	"docqc/pkg/models"
)

// Example demonstrates a statistics-only assessment of saved OCR output.
func Example() {
	// Observations normally come from a saved text.json artifact; see the
	// textract package for the file readers.
	obs := []models.Observation{
		{Text: "INVOICE NO 2024-117", Confidence: 99.5},
		{Text: "Total amount 1.250,00 EUR", Confidence: 98.0},
		{Text: "Due within 14 days", Confidence: 97.5},
		{Text: "LESEN HICMAND", Confidence: 84.0},
	}

	assessor := quality.NewAssessor()
	report, err := assessor.Assess(obs)
	if err != nil {
		log.Fatalf("Assessment failed: %v", err)
	}

	fmt.Printf("quality: %s\n", report.Statistics.QualityAssessment)
	fmt.Printf("median: %.2f\n", report.Statistics.MedianConfidence)
	fmt.Printf("std: %.2f\n", report.Statistics.StdConfidence)
	fmt.Printf("blurry: %v\n", report.Overall.IsBlurry)

	// Output:
	// quality: fair
	// median: 97.75
	// std: 6.25
	// blurry: false
}

// ExampleAssessor_AssessWithSharpness combines the confidence statistics with
// a laplacian variance score from the image collaborator.
func ExampleAssessor_AssessWithSharpness() {
	obs := []models.Observation{
		{Text: "LESEN", Confidence: 36.07},
		{Text: "HICMAND", Confidence: 45.00},
		{Text: "unleserlich", Confidence: 62.50},
		{Text: "Beleg", Confidence: 71.25},
	}

	assessor := quality.NewAssessor()
	report, err := assessor.AssessWithSharpness(obs, 45.2)
	if err != nil {
		log.Fatalf("Assessment failed: %v", err)
	}

	fmt.Printf("quality: %s\n", report.Statistics.QualityAssessment)
	fmt.Printf("sharpness: %s\n", report.Sharpness.Quality)
	fmt.Printf("blurry: %v\n", report.Overall.IsBlurry)
	fmt.Printf("indicators: %v\n", report.Overall.BlurIndicators)

	// Output:
	// quality: poor
	// sharpness: blurry
	// blurry: true
	// indicators: [laplacian textract]
}

// ExampleClassifySharpness shows how a deployment with a differently
// calibrated image tool supplies its own cutoffs.
func ExampleClassifySharpness() {
	thresholds := quality.SharpnessThresholds{BlurryBelow: 80.0, SharpFrom: 150.0}

	for _, score := range []float64{70.0, 120.0, 260.0} {
		analysis, err := quality.ClassifySharpness(score, thresholds)
		if err != nil {
			log.Fatalf("Classification failed: %v", err)
		}
		fmt.Printf("%.0f: %s\n", score, analysis.Quality)
	}

	// Output:
	// 70: blurry
	// 120: moderate
	// 260: sharp
}

// ExampleReliabilityBand grades a document classifier's confidence score.
func ExampleReliabilityBand() {
	for _, score := range []float64{0.95, 0.55, 0.1} {
		band, err := quality.ReliabilityBand(score)
		if err != nil {
			log.Fatalf("Gating failed: %v", err)
		}
		fmt.Printf("%.2f -> %s\n", score, band)
	}

	// Output:
	// 0.95 -> high
	// 0.55 -> medium
	// 0.10 -> low
}
