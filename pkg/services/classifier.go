package services

import (
	"context"

	"docqc/pkg/models"
)

// DocumentClassifier labels a document's recognized text with a category and
// a confidence score in [0, 1].
//
// Implementations call hosted language models and are inherently
// non-deterministic, so they stay behind this interface and outside the
// assessment engine. The category service consumes the verdict files they
// leave behind and drives live implementations through ClassifyAndGate,
// grading the confidence they report either way.
type DocumentClassifier interface {
	// ClassifyDocument labels the document text. The returned confidence
	// must lie in [0, 1]; the reliability gate rejects anything else.
	ClassifyDocument(ctx context.Context, text string) (*models.CategoryDetection, error)
}
