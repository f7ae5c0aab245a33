// Package category interprets saved verdicts of the document classification
// collaborator and grades how much they can be trusted.
//
// The classifier itself is a hosted-model collaborator behind
// services.DocumentClassifier; this package only consumes the verdict files
// it leaves behind and applies the reliability gate to their confidence.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"docqc/internal/logger"
	"docqc/internal/quality"
	"docqc/pkg/models"
	"docqc/pkg/services"
	"github.com/rs/zerolog"
)

// Document categories the classifier collaborator produces.
const (
	CategoryLicense     = "license"
	CategoryReceipt     = "receipt"
	CategoryBankReceipt = "bank-receipt"
	CategoryIDCard      = "idcard"
	CategoryPassport    = "passport"
)

// Fallback verdict assumed when the classifier collaborator fails and the
// caller opted into a default instead of an error.
const (
	FallbackCategory   = CategoryLicense
	FallbackConfidence = 0.5
)

// ErrMissingCategory is returned when a verdict file parses but names no
// category.
var ErrMissingCategory = errors.New("verdict carries no category")

// GatedDetection is a classification verdict together with its reliability
// band.
type GatedDetection struct {
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Reliability string  `json:"reliability"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// Service loads and gates classification verdicts.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new category service.
func NewService() *Service {
	return &Service{
		log: logger.WithComponent("category"),
	}
}

// LoadDetection reads a saved verdict file. Both confidence encodings are
// accepted (see models.CategoryDetection).
func (s *Service) LoadDetection(path string) (*models.CategoryDetection, error) {
	const op = "LoadDetection"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", op, path, err)
	}

	var detection models.CategoryDetection
	if err := json.Unmarshal(data, &detection); err != nil {
		return nil, fmt.Errorf("%s: parsing %s: %w", op, path, err)
	}
	if detection.Category == "" {
		return nil, fmt.Errorf("%s: %s: %w", op, path, ErrMissingCategory)
	}

	s.log.Debug().
		Str("category", detection.Category).
		Float64("confidence", detection.Confidence).
		Str("file", path).
		Msg("Classification verdict loaded")

	return &detection, nil
}

// Gate grades the verdict's confidence into a reliability band. An
// out-of-range confidence propagates quality.ErrConfidenceOutOfRange; the
// verdict is never silently adjusted.
func (s *Service) Gate(detection *models.CategoryDetection) (*GatedDetection, error) {
	const op = "Gate"

	band, err := quality.ReliabilityBand(detection.Confidence)
	if err != nil {
		return nil, fmt.Errorf("%s: %q verdict: %w", op, detection.Category, err)
	}

	gated := &GatedDetection{
		Category:    detection.Category,
		Confidence:  detection.Confidence,
		Reliability: band,
		Reasoning:   detection.Reasoning,
	}

	s.log.Debug().
		Str("category", gated.Category).
		Float64("confidence", gated.Confidence).
		Str("reliability", gated.Reliability).
		Msg("Classification verdict gated")

	return gated, nil
}

// ClassifyAndGate runs the classifier collaborator on the document text and
// gates its verdict in one step. When fallback is true a failed classification
// degrades to FallbackDetection instead of an error, mirroring the pipeline's
// behavior around its hosted classifier.
func (s *Service) ClassifyAndGate(ctx context.Context, classifier services.DocumentClassifier, text string, fallback bool) (*GatedDetection, error) {
	const op = "ClassifyAndGate"

	detection, err := classifier.ClassifyDocument(ctx, text)
	if err != nil {
		if !fallback {
			return nil, fmt.Errorf("%s: classification failed: %w", op, err)
		}
		s.log.Warn().
			Err(err).
			Msg("Classifier failed, substituting fallback detection")
		detection = FallbackDetection()
	}

	return s.Gate(detection)
}

// FallbackDetection returns the verdict the pipeline assumes when the
// classifier collaborator fails.
func FallbackDetection() *models.CategoryDetection {
	return &models.CategoryDetection{
		Category:   FallbackCategory,
		Confidence: FallbackConfidence,
		Reasoning:  "Fallback due to detection error",
	}
}
