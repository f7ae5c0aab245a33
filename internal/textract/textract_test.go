package textract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqc/pkg/models"
)

func TestParseItems(t *testing.T) {
	data := []byte(`[
  {"text": "MAYBANK", "confidence": 99.89},
  {"text": "CASH DEPOSIT", "confidence": 99.91},
  {"text": "LESEN HICMAND", "confidence": 36.07}
]`)

	obs, err := ParseItems(data)
	if err != nil {
		t.Fatalf("ParseItems returned error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("ParseItems returned %d observations, want 3", len(obs))
	}

	want := models.Observation{Text: "MAYBANK", Confidence: 99.89}
	if obs[0] != want {
		t.Errorf("obs[0] = %+v, want %+v", obs[0], want)
	}
	if obs[2].Confidence != 36.07 {
		t.Errorf("obs[2].Confidence = %v, want 36.07", obs[2].Confidence)
	}
}

func TestParseItemsToleratesExtraFields(t *testing.T) {
	// Older sessions saved geometry and block ids alongside the text.
	data := []byte(`[{"text": "TOTAL", "confidence": 98.05, "block_id": "b-117"}]`)

	obs, err := ParseItems(data)
	if err != nil {
		t.Fatalf("ParseItems returned error: %v", err)
	}
	if len(obs) != 1 || obs[0].Text != "TOTAL" {
		t.Errorf("obs = %+v, want the TOTAL item", obs)
	}
}

func TestParseItemsEmptyList(t *testing.T) {
	obs, err := ParseItems([]byte(`[]`))
	if err != nil {
		t.Fatalf("ParseItems returned error: %v", err)
	}
	if obs == nil || len(obs) != 0 {
		t.Errorf("obs = %#v, want an empty non-nil slice", obs)
	}
}

func TestParseItemsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing confidence", `[{"text": "MAYBANK"}]`},
		{"missing text", `[{"confidence": 99.89}]`},
		{"confidence as string", `[{"text": "MAYBANK", "confidence": "high"}]`},
		{"bare values", `[12, 14]`},
	}

	for _, tt := range tests {
		_, err := ParseItems([]byte(tt.data))
		if !errors.Is(err, ErrSchemaViolation) {
			t.Errorf("%s: error = %v, want ErrSchemaViolation", tt.name, err)
		}
	}
}

func TestParseItemsMalformedJSON(t *testing.T) {
	_, err := ParseItems([]byte(`[{"text": "MAYBANK",`))
	if !errors.Is(err, ErrInvalidArtifact) {
		t.Fatalf("error = %v, want ErrInvalidArtifact", err)
	}
}

func TestParseResponseExtractsLineBlocks(t *testing.T) {
	data := []byte(`{
  "DocumentMetadata": {"Pages": 1},
  "Blocks": [
    {"BlockType": "PAGE", "Confidence": 0},
    {"BlockType": "LINE", "Text": "MAYBANK", "Confidence": 99.89},
    {"BlockType": "WORD", "Text": "MAYBANK", "Confidence": 99.95},
    {"BlockType": "LINE", "Text": "CASH DEPOSIT", "Confidence": 99.91},
    {"BlockType": "TABLE", "Confidence": 97.11}
  ]
}`)

	obs, err := ParseResponse(data)
	if err != nil {
		t.Fatalf("ParseResponse returned error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("ParseResponse returned %d observations, want 2 LINE blocks", len(obs))
	}
	if obs[0].Text != "MAYBANK" || obs[1].Text != "CASH DEPOSIT" {
		t.Errorf("obs = %+v, want the two LINE blocks in document order", obs)
	}
}

func TestParseResponseWithoutBlocks(t *testing.T) {
	_, err := ParseResponse([]byte(`{"forms": []}`))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestParseLog(t *testing.T) {
	data := []byte(`Starting Textract analysis...
text = "MAYBANK"  | confidence = 99.89
text = "CASH DEPOSIT"  | confidence = 99.91
text = "LESEN = HICMAND"  | confidence = 36.07
a progress line without any markers
text = "broken"  | confidence = n/a
`)

	obs, err := ParseLog(data)
	if err != nil {
		t.Fatalf("ParseLog returned error: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("ParseLog returned %d observations, want 3", len(obs))
	}

	// The first "=" splits key from value, so text containing "=" survives.
	want := models.Observation{Text: "LESEN = HICMAND", Confidence: 36.07}
	if obs[2] != want {
		t.Errorf("obs[2] = %+v, want %+v", obs[2], want)
	}
}

func TestParseLogWithNoMatches(t *testing.T) {
	_, err := ParseLog([]byte("confidence = mentioned once\nbut no text lines\n"))
	if !errors.Is(err, ErrNoTextData) {
		t.Fatalf("error = %v, want ErrNoTextData", err)
	}
}

func TestLoadDispatchesOnShape(t *testing.T) {
	dir := t.TempDir()

	files := map[string]struct {
		content string
		want    int
	}{
		"text.json":     {`[{"text": "MAYBANK", "confidence": 99.89}]`, 1},
		"response.json": {`{"Blocks": [{"BlockType": "LINE", "Text": "MAYBANK", "Confidence": 99.89}]}`, 1},
		"textract.log":  {`text = "MAYBANK"  | confidence = 99.89`, 1},
	}

	for name, tt := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}

		obs, err := Load(path)
		if err != nil {
			t.Errorf("Load(%s) returned error: %v", name, err)
			continue
		}
		if len(obs) != tt.want {
			t.Errorf("Load(%s) returned %d observations, want %d", name, len(obs), tt.want)
		}
	}
}

func TestLoadRejectsUnknownContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("meeting notes, nothing useful\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("error = %v, want ErrUnknownFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Load of a missing file should fail")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error is %T, want *ParseError", err)
	}
}
