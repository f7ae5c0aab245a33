// Package history persists finished assessment reports so earlier runs can
// be listed and re-inspected without keeping the session artifacts around.
//
// The store is a single SQLite file. One row per assessed document: the
// headline verdict in queryable columns, the full report as a JSON payload.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docqc/internal/logger"
	"docqc/internal/quality"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no record carries the requested ID.
var ErrNotFound = errors.New("assessment record not found")

// Record is one stored assessment run.
type Record struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	AssessedAt      time.Time       `json:"assessed_at"`
	TotalItems      int             `json:"total_items"`
	Quality         string          `json:"quality_assessment"`
	ConfidenceLevel string          `json:"confidence_level"`
	IsBlurry        bool            `json:"is_blurry"`
	Report          *quality.Report `json:"report,omitempty"`
}

// NewRecord builds a record for source from a finished report.
func NewRecord(source string, report *quality.Report) *Record {
	return &Record{
		ID:              uuid.NewString(),
		Source:          source,
		AssessedAt:      time.Now().UTC(),
		TotalItems:      report.Statistics.TotalItems,
		Quality:         report.Statistics.QualityAssessment,
		ConfidenceLevel: report.Overall.ConfidenceLevel,
		IsBlurry:        report.Overall.IsBlurry,
		Report:          report,
	}
}

// Store persists assessment records in a SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS assessments (
		id               TEXT PRIMARY KEY,
		source           TEXT NOT NULL,
		assessed_at      TEXT NOT NULL,
		total_items      INTEGER NOT NULL,
		quality          TEXT NOT NULL,
		confidence_level TEXT NOT NULL,
		is_blurry        INTEGER NOT NULL,
		report           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_assessed_at ON assessments (assessed_at)`,
}

// Open opens the store at path, creating the file and schema as needed.
func Open(path string) (*Store, error) {
	const op = "Open"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create database directory: %w", op, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	// SQLite allows a single writer; serialize access through one connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to apply pragmas: %w", op, err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to create schema: %w", op, err)
		}
	}

	log := logger.WithComponent("history")
	log.Debug().Str("path", path).Msg("History store opened")

	return &Store{db: db, log: log}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Save inserts the record, assigning an ID and timestamp when they are unset.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	const op = "Save"

	if rec.Report == nil {
		return fmt.Errorf("%s: record carries no report", op)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AssessedAt.IsZero() {
		rec.AssessedAt = time.Now().UTC()
	}

	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("%s: failed to encode report: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, source, assessed_at, total_items, quality, confidence_level, is_blurry, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Source,
		rec.AssessedAt.UTC().Format(time.RFC3339Nano),
		rec.TotalItems,
		rec.Quality,
		rec.ConfidenceLevel,
		rec.IsBlurry,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to insert record %s: %w", op, rec.ID, err)
	}

	s.log.Debug().
		Str("id", rec.ID).
		Str("source", rec.Source).
		Str("quality", rec.Quality).
		Msg("Assessment record saved")

	return nil
}

// List returns up to limit records, newest first. The report payload is left
// out; use Get to load a full record. A non-positive limit falls back to 20.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	const op = "List"

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, assessed_at, total_items, quality, confidence_level, is_blurry
		FROM assessments
		ORDER BY assessed_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query records: %w", op, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var assessedAt string
		if err := rows.Scan(&rec.ID, &rec.Source, &assessedAt, &rec.TotalItems, &rec.Quality, &rec.ConfidenceLevel, &rec.IsBlurry); err != nil {
			return nil, fmt.Errorf("%s: failed to scan record: %w", op, err)
		}
		rec.AssessedAt, err = time.Parse(time.RFC3339Nano, assessedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse timestamp %q: %w", op, assessedAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to iterate records: %w", op, err)
	}

	return records, nil
}

// Get loads the full record, report included. Returns ErrNotFound when the
// ID is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	const op = "Get"

	var (
		rec        Record
		assessedAt string
		reportJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, assessed_at, total_items, quality, confidence_level, is_blurry, report
		FROM assessments
		WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Source, &assessedAt, &rec.TotalItems, &rec.Quality, &rec.ConfidenceLevel, &rec.IsBlurry, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %s: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query record %s: %w", op, id, err)
	}

	rec.AssessedAt, err = time.Parse(time.RFC3339Nano, assessedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse timestamp %q: %w", op, assessedAt, err)
	}

	var report quality.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("%s: failed to decode stored report: %w", op, err)
	}
	rec.Report = &report

	return &rec, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
