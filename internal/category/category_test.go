package category

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqc/internal/quality"
	"docqc/pkg/models"
)

// stubClassifier stands in for the hosted classifier collaborator.
type stubClassifier struct {
	detection *models.CategoryDetection
	err       error
}

func (c *stubClassifier) ClassifyDocument(ctx context.Context, text string) (*models.CategoryDetection, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.detection, nil
}

func writeVerdict(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "category.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing verdict: %v", err)
	}
	return path
}

func TestLoadDetectionFlatConfidence(t *testing.T) {
	path := writeVerdict(t, `{"category": "receipt", "confidence": 0.85, "reasoning": "Merchant header and totals present"}`)

	detection, err := NewService().LoadDetection(path)
	if err != nil {
		t.Fatalf("LoadDetection returned error: %v", err)
	}

	if detection.Category != CategoryReceipt {
		t.Errorf("Category = %q, want %q", detection.Category, CategoryReceipt)
	}
	if detection.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", detection.Confidence)
	}
	if detection.Reasoning == "" {
		t.Error("Reasoning should survive loading")
	}
}

func TestLoadDetectionNestedConfidence(t *testing.T) {
	path := writeVerdict(t, `{"category": "idcard", "confidence": {"level": "high", "score": 0.92}}`)

	detection, err := NewService().LoadDetection(path)
	if err != nil {
		t.Fatalf("LoadDetection returned error: %v", err)
	}

	if detection.Category != CategoryIDCard {
		t.Errorf("Category = %q, want %q", detection.Category, CategoryIDCard)
	}
	if detection.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92 from the nested score", detection.Confidence)
	}
}

func TestLoadDetectionWithoutCategory(t *testing.T) {
	path := writeVerdict(t, `{"confidence": 0.9}`)

	_, err := NewService().LoadDetection(path)
	if !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("error = %v, want ErrMissingCategory", err)
	}
}

func TestLoadDetectionMissingFile(t *testing.T) {
	_, err := NewService().LoadDetection(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("LoadDetection of a missing file should fail")
	}
}

func TestGate(t *testing.T) {
	svc := NewService()
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.95, quality.LevelHigh},
		{0.55, quality.LevelMedium},
		{0.1, quality.LevelLow},
	}

	for _, tt := range tests {
		detection := FallbackDetection()
		detection.Confidence = tt.confidence

		gated, err := svc.Gate(detection)
		if err != nil {
			t.Fatalf("Gate(%.2f) returned error: %v", tt.confidence, err)
		}
		if gated.Reliability != tt.want {
			t.Errorf("Gate(%.2f).Reliability = %q, want %q", tt.confidence, gated.Reliability, tt.want)
		}
		if gated.Confidence != tt.confidence || gated.Category != detection.Category {
			t.Errorf("Gate(%.2f) mutated the verdict: %+v", tt.confidence, gated)
		}
	}
}

func TestGateRejectsOutOfRange(t *testing.T) {
	detection := FallbackDetection()
	detection.Confidence = 1.3

	_, err := NewService().Gate(detection)
	if !errors.Is(err, quality.ErrConfidenceOutOfRange) {
		t.Fatalf("error = %v, want quality.ErrConfidenceOutOfRange", err)
	}
}

func TestClassifyAndGate(t *testing.T) {
	classifier := &stubClassifier{
		detection: &models.CategoryDetection{Category: CategoryReceipt, Confidence: 0.85},
	}

	gated, err := NewService().ClassifyAndGate(context.Background(), classifier, "CASH DEPOSIT 500.00", false)
	if err != nil {
		t.Fatalf("ClassifyAndGate returned error: %v", err)
	}

	if gated.Category != CategoryReceipt {
		t.Errorf("Category = %q, want %q", gated.Category, CategoryReceipt)
	}
	if gated.Reliability != quality.LevelHigh {
		t.Errorf("Reliability = %q, want %q", gated.Reliability, quality.LevelHigh)
	}
}

func TestClassifyAndGateFailureWithoutFallback(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("model endpoint unreachable")}

	_, err := NewService().ClassifyAndGate(context.Background(), classifier, "text", false)
	if err == nil {
		t.Fatal("ClassifyAndGate should propagate the classifier failure")
	}
	if !errors.Is(err, classifier.err) {
		t.Errorf("error = %v, should wrap the classifier failure", err)
	}
}

func TestClassifyAndGateFallsBack(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("model endpoint unreachable")}

	gated, err := NewService().ClassifyAndGate(context.Background(), classifier, "text", true)
	if err != nil {
		t.Fatalf("ClassifyAndGate with fallback returned error: %v", err)
	}

	if gated.Category != FallbackCategory {
		t.Errorf("Category = %q, want the fallback %q", gated.Category, FallbackCategory)
	}
	if gated.Reliability != quality.LevelMedium {
		t.Errorf("Reliability = %q, want %q for the half-confidence fallback", gated.Reliability, quality.LevelMedium)
	}
}

func TestFallbackDetectionGatesToMedium(t *testing.T) {
	gated, err := NewService().Gate(FallbackDetection())
	if err != nil {
		t.Fatalf("Gate returned error: %v", err)
	}

	if gated.Category != CategoryLicense {
		t.Errorf("Category = %q, want %q", gated.Category, CategoryLicense)
	}
	if gated.Reliability != quality.LevelMedium {
		t.Errorf("Reliability = %q, want %q for the half-confidence fallback", gated.Reliability, quality.LevelMedium)
	}
}
