package models

import (
	"encoding/json"
	"fmt"
)

// CategoryDetection is a document classification verdict as saved by the
// classifier collaborator. Saved verdicts carry the confidence either as a
// plain number or as a nested {"level": ..., "score": ...} object; both
// decode into Confidence. Marshaling always produces the flat form.
type CategoryDetection struct {
	Category   string  `json:"category"`            // Document category (license, receipt, bank-receipt, idcard, passport)
	Confidence float64 `json:"confidence"`          // Classifier confidence in [0, 1]
	Reasoning  string  `json:"reasoning,omitempty"` // Free-text rationale from the classifier
}

// UnmarshalJSON accepts both saved verdict encodings.
func (d *CategoryDetection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category   string          `json:"category"`
		Confidence json.RawMessage `json:"confidence"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Category = raw.Category
	d.Reasoning = raw.Reasoning
	d.Confidence = 0

	if len(raw.Confidence) == 0 {
		return nil
	}

	var score float64
	if err := json.Unmarshal(raw.Confidence, &score); err == nil {
		d.Confidence = score
		return nil
	}

	var nested struct {
		Level string  `json:"level"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw.Confidence, &nested); err != nil {
		return fmt.Errorf("models: unsupported confidence encoding: %w", err)
	}
	d.Confidence = nested.Score
	return nil
}
