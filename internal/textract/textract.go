// Package textract parses the artifacts an Amazon Textract OCR run leaves
// behind into confidence observations for quality assessment.
//
// Three artifact shapes are understood:
//   - A text items file (text.json): the [{"text", "confidence"}, ...] list
//     saved per processing session, validated against a JSON Schema.
//   - A raw DetectDocumentText response: {"Blocks": [...]}; only LINE
//     blocks carry the line-level confidences and are extracted.
//   - A legacy console capture (textract.log) with lines of the form
//     text = "..."  | confidence = NN.NN.
//
// Limitations:
//   - Artifacts are read fully into memory; they are session transcripts,
//     not images, and stay small.
//   - WORD and table blocks in raw responses are ignored, matching the
//     pipeline that wrote the artifacts.
package textract

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"unicode"

	"docqc/pkg/models"
)

// BlockTypeLine marks the Textract blocks that carry one recognized text
// line and its confidence.
const BlockTypeLine = "LINE"

// Block mirrors the subset of a Textract response block used for confidence
// analysis.
type Block struct {
	BlockType  string  `json:"BlockType"`
	Text       string  `json:"Text"`
	Confidence float64 `json:"Confidence"`
}

type response struct {
	Blocks []Block `json:"Blocks"`
}

// Load reads a results file and dispatches on its shape.
func Load(path string) ([]models.Observation, error) {
	const op = "Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(op, err, path)
	}
	return Parse(data)
}

// Parse dispatches on the artifact's shape: a JSON array is a text items
// file, a JSON object is a raw response, and anything mentioning the legacy
// log markers is parsed as a log capture.
func Parse(data []byte) ([]models.Observation, error) {
	const op = "Parse"

	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	switch {
	case len(trimmed) == 0:
		return nil, NewParseError(op, ErrUnknownFormat, "empty file")
	case trimmed[0] == '[':
		return ParseItems(data)
	case trimmed[0] == '{':
		return ParseResponse(data)
	case bytes.Contains(data, []byte("confidence =")):
		return ParseLog(data)
	default:
		return nil, NewParseError(op, ErrUnknownFormat, "")
	}
}

// ParseItems decodes a saved text items file. The payload is validated
// against the items schema before decoding so a wrong or truncated file is
// reported precisely instead of silently yielding zero items.
func ParseItems(data []byte) ([]models.Observation, error) {
	const op = "ParseItems"

	schema, err := compiledItemsSchema()
	if err != nil {
		return nil, NewParseError(op, err, "items schema")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewParseError(op, ErrInvalidArtifact, err.Error())
	}
	if err := schema.Validate(doc); err != nil {
		return nil, NewParseError(op, ErrSchemaViolation, err.Error())
	}

	obs := []models.Observation{}
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, NewParseError(op, ErrInvalidArtifact, err.Error())
	}
	return obs, nil
}

// ParseResponse extracts the LINE blocks of a raw Textract response. An
// empty Blocks list is a valid response for a blank page and yields zero
// observations; the caller decides how to treat that.
func ParseResponse(data []byte) ([]models.Observation, error) {
	const op = "ParseResponse"

	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, NewParseError(op, ErrInvalidArtifact, err.Error())
	}
	if resp.Blocks == nil {
		return nil, NewParseError(op, ErrUnknownFormat, "no Blocks array")
	}

	obs := []models.Observation{}
	for _, b := range resp.Blocks {
		if b.BlockType != BlockTypeLine {
			continue
		}
		obs = append(obs, models.Observation{Text: b.Text, Confidence: b.Confidence})
	}
	return obs, nil
}

// ParseLog recovers observations from a legacy log capture. Lines that do
// not match the text/confidence pattern are skipped, exactly like the
// original log scraper; a capture yielding nothing at all is rejected.
func ParseLog(data []byte) ([]models.Observation, error) {
	const op = "ParseLog"

	var obs []models.Observation
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "text =") || !strings.Contains(line, "confidence =") {
			continue
		}

		textPart, confPart, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		_, rawText, ok := strings.Cut(textPart, "=")
		if !ok {
			continue
		}
		_, rawConf, ok := strings.Cut(confPart, "=")
		if !ok {
			continue
		}
		confidence, err := strconv.ParseFloat(strings.TrimSpace(rawConf), 64)
		if err != nil {
			continue
		}

		obs = append(obs, models.Observation{
			Text:       strings.Trim(strings.TrimSpace(rawText), `"`),
			Confidence: confidence,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, NewParseError(op, err, "")
	}
	if len(obs) == 0 {
		return nil, NewParseError(op, ErrNoTextData, "no log lines matched")
	}
	return obs, nil
}
