// Package store persists finished session reports to sqlite. Records are
// append-only: the current session's result is written once, after the
// classifier has produced it, and never updated. A failed session writes
// nothing.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
	"github.com/pathlight-labs/pathlight/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id              TEXT PRIMARY KEY,
	created_at      TIMESTAMP NOT NULL,
	mode            TEXT NOT NULL,
	questions_asked INTEGER NOT NULL,
	report_json     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
`

// Store wraps the sqlite connection.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the results database under dataDir,
// with WAL journaling for concurrent readers.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, apperrors.NewConfigError("failed to create data directory", err)
	}

	dbPath := filepath.Join(dataDir, "pathlight.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to open results database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewConfigError("failed to reach results database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewConfigError("failed to initialize results schema", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// SaveReport appends one finished session record.
func (s *Store) SaveReport(r *report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return apperrors.NewInternalError("failed to encode report", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO results (id, created_at, mode, questions_asked, report_json) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Meta.Timestamp.UTC(), r.Meta.Mode, r.Meta.QuestionsAsked, string(payload),
	)
	if err != nil {
		return apperrors.NewInternalError("failed to insert result", err)
	}
	return nil
}

// GetReport loads one record by id.
func (s *Store) GetReport(id string) (*report.Report, error) {
	var payload string
	err := s.db.QueryRow(`SELECT report_json FROM results WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query result", err)
	}
	var r report.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored report", err)
	}
	return &r, nil
}

// ListReports returns the most recent records, newest first.
func (s *Store) ListReports(limit int) ([]*report.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT report_json FROM results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list results", err)
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.NewInternalError("failed to scan result row", err)
		}
		var r report.Report
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, apperrors.NewInternalError("failed to decode stored report", err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
