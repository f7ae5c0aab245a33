// Package session locates and loads the per-document processing sessions the
// pipeline writes under the results directory.
//
// A session directory is named <stem>_<timestamp> (timestamp layout
// 20060102_150405) and holds the saved artifacts for one document:
// text.json, the legacy textract.log, and blur_analysis.json when the image
// collaborator ran. Only the artifacts needed for quality assessment are
// read; forms, tables and query outputs stay untouched.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"docqc/internal/logger"
	"docqc/internal/quality"
	"docqc/internal/textract"
	"docqc/pkg/models"
	"github.com/rs/zerolog"
)

// Artifact names inside a session directory.
const (
	// ItemsFile is the per-session text items artifact.
	ItemsFile = "text.json"

	// LegacyLogFile is the console capture older sessions saved instead.
	LegacyLogFile = "textract.log"

	// SharpnessFile is the image collaborator's saved sharpness verdict,
	// either the full verdict or a bare {"score": N}.
	SharpnessFile = "blur_analysis.json"
)

// TimestampLayout is the layout of the trailing timestamp in session
// directory names.
const TimestampLayout = "20060102_150405"

// Session is one loaded processing session.
type Session struct {
	// Dir is the session directory path.
	Dir string

	// Name is the directory base name (<stem>_<timestamp>).
	Name string

	// Stem is the document file name the session was created for.
	Stem string

	// StartedAt is parsed from the directory timestamp, zero when the name
	// does not follow the convention.
	StartedAt time.Time

	// Observations are the session's OCR text items.
	Observations []models.Observation

	// Sharpness is the saved sharpness verdict, nil when the sidecar is
	// absent or carries only a bare score.
	Sharpness *quality.SharpnessAnalysis

	// SharpnessScore is the bare score from a sidecar without a verdict,
	// nil when unavailable. Callers classify it with their own thresholds.
	SharpnessScore *float64
}

// Loader discovers and reads session directories.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new session loader.
func NewLoader() *Loader {
	return &Loader{
		log: logger.WithComponent("session-loader"),
	}
}

// Discover lists the session directories under root, sorted by name. A
// directory counts as a session when it holds a text items or legacy log
// artifact; anything else under root is ignored.
func (l *Loader) Discover(root string) ([]string, error) {
	const op = "Discover"

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", op, root, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if !hasArtifacts(dir) {
			l.log.Debug().
				Str("dir", dir).
				Msg("Skipping directory without session artifacts")
			continue
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	l.log.Info().
		Int("sessions", len(dirs)).
		Str("root", root).
		Msg("Session discovery completed")

	return dirs, nil
}

// Load reads one session directory. A missing or unreadable sharpness
// sidecar degrades the session to statistics-only rather than failing it.
func (l *Loader) Load(dir string) (*Session, error) {
	const op = "Load"

	name := filepath.Base(dir)
	s := &Session{Dir: dir, Name: name}
	s.Stem, s.StartedAt = splitSessionName(name)

	obs, err := l.loadObservations(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, dir, err)
	}
	s.Observations = obs

	sharp, score, err := l.loadSharpness(dir)
	if err != nil {
		l.log.Warn().
			Err(err).
			Str("session", name).
			Msg("Ignoring unreadable sharpness sidecar")
	} else {
		s.Sharpness = sharp
		s.SharpnessScore = score
	}

	l.log.Debug().
		Str("session", name).
		Int("observations", len(s.Observations)).
		Bool("has_sharpness", s.Sharpness != nil || s.SharpnessScore != nil).
		Msg("Session loaded")

	return s, nil
}

// loadObservations prefers the items file and falls back to the legacy log.
func (l *Loader) loadObservations(dir string) ([]models.Observation, error) {
	for _, artifact := range []string{ItemsFile, LegacyLogFile} {
		path := filepath.Join(dir, artifact)
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		return textract.Load(path)
	}
	return nil, fmt.Errorf("no %s or %s artifact", ItemsFile, LegacyLogFile)
}

// loadSharpness reads the optional sidecar. It returns either a full saved
// verdict, or a bare score the caller still has to classify, or neither when
// the sidecar does not exist.
func (l *Loader) loadSharpness(dir string) (*quality.SharpnessAnalysis, *float64, error) {
	path := filepath.Join(dir, SharpnessFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, nil
	}
	return ReadSharpnessFile(path)
}

// ReadSharpnessFile parses a saved sharpness sidecar. Sidecars written by the
// detector carry a full verdict; older capture scripts wrote only the raw
// Laplacian score, which the caller still has to classify.
func ReadSharpnessFile(path string) (*quality.SharpnessAnalysis, *float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var sidecar struct {
		Method   string   `json:"method"`
		Score    *float64 `json:"score"`
		IsBlurry *bool    `json:"is_blurry"`
		Quality  string   `json:"quality"`
	}
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	switch {
	case sidecar.Score != nil && sidecar.IsBlurry != nil && sidecar.Quality != "":
		method := sidecar.Method
		if method == "" {
			method = quality.MethodLaplacian
		}
		return &quality.SharpnessAnalysis{
			Method:   method,
			Score:    *sidecar.Score,
			IsBlurry: *sidecar.IsBlurry,
			Quality:  sidecar.Quality,
		}, nil, nil
	case sidecar.Score != nil:
		return nil, sidecar.Score, nil
	default:
		return nil, nil, fmt.Errorf("%s carries neither a verdict nor a score", filepath.Base(path))
	}
}

// hasArtifacts reports whether dir holds any observation artifact.
func hasArtifacts(dir string) bool {
	for _, artifact := range []string{ItemsFile, LegacyLogFile} {
		if info, err := os.Stat(filepath.Join(dir, artifact)); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// splitSessionName splits a <stem>_<timestamp> directory name. The timestamp
// is the last two underscore-separated segments; stems may themselves
// contain underscores. Names that do not follow the convention keep the full
// name as stem and a zero time.
func splitSessionName(name string) (string, time.Time) {
	parts := strings.Split(name, "_")
	if len(parts) >= 3 {
		candidate := parts[len(parts)-2] + "_" + parts[len(parts)-1]
		if ts, err := time.Parse(TimestampLayout, candidate); err == nil {
			return strings.Join(parts[:len(parts)-2], "_"), ts
		}
	}
	return name, time.Time{}
}
