package models

// Observation is one piece of recognized text together with the OCR engine's
// confidence in it. It mirrors a single entry of the saved text.json
// artifact, so the JSON field names are a compatibility contract.
type Observation struct {
	Text       string  `json:"text"`       // Recognized text (may be empty)
	Confidence float64 `json:"confidence"` // Engine confidence, conventionally 0-100
}
