// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists discovery runs to a local SQLite catalog. The
// pipeline itself is stateless; saving a run is an explicit CLI action, and
// the library is never consulted during discovery or enrichment.
package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

const dbFile = "library.db"

// Store manages the discovery library SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Run summarizes one saved discovery run.
type Run struct {
	ID      int64
	Topic   string
	Field   string
	Queries []string
	Saved   time.Time
	Records int
}

// Open opens or creates the library database at dir/library.db, creating
// the schema when absent.
func Open(cfg types.LibraryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "library"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			field TEXT,
			queries TEXT,
			saved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			title TEXT NOT NULL,
			authors TEXT,
			year INTEGER,
			abstract TEXT,
			citation_count INTEGER,
			influential_citation_count INTEGER,
			is_open_access INTEGER,
			pdf_url TEXT,
			venue TEXT,
			doi TEXT,
			source_id TEXT,
			url TEXT,
			source TEXT,
			quality_score REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores one discovery run and its ranked records, returning the run ID.
func (s *Store) Save(topic string, qs types.QuerySet, records []types.Record) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (topic, field, queries, saved_at) VALUES (?, ?, ?, ?)`,
		topic, qs.Field, strings.Join(qs.Queries, "\n"), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records (
		run_id, title, authors, year, abstract,
		citation_count, influential_citation_count, is_open_access,
		pdf_url, venue, doi, source_id, url, source, quality_score
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			runID, r.Title, strings.Join(r.Authors, "; "), r.Year, r.Abstract,
			r.CitationCount, r.InfluentialCitationCount, r.IsOpenAccess,
			r.PDFURL, r.Venue, r.DOI, r.SourceID, r.URL, r.Source, r.QualityScore,
		); err != nil {
			return 0, fmt.Errorf("inserting record %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists saved runs, most recent first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.topic, r.field, r.queries, r.saved_at, count(rec.id)
		FROM runs r LEFT JOIN records rec ON rec.run_id = r.id
		GROUP BY r.id ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var queries, savedAt string
		if err := rows.Scan(&run.ID, &run.Topic, &run.Field, &queries, &savedAt, &run.Records); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if queries != "" {
			run.Queries = strings.Split(queries, "\n")
		}
		if t, err := time.Parse(time.RFC3339, savedAt); err == nil {
			run.Saved = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Records returns the ranked records of one run, in saved (rank) order.
func (s *Store) Records(runID int64) ([]types.Record, error) {
	rows, err := s.db.Query(`
		SELECT title, authors, year, abstract,
			citation_count, influential_citation_count, is_open_access,
			pdf_url, venue, doi, source_id, url, source, quality_score
		FROM records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Find searches saved records by a term matched against title and
// abstract, best score first, capped at the configured max results.
func (s *Store) Find(term string) ([]types.Record, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`
		SELECT title, authors, year, abstract,
			citation_count, influential_citation_count, is_open_access,
			pdf_url, venue, doi, source_id, url, source, quality_score
		FROM records
		WHERE title LIKE ? OR abstract LIKE ?
		ORDER BY quality_score DESC LIMIT ?`, pattern, pattern, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]types.Record, error) {
	var records []types.Record
	for rows.Next() {
		var r types.Record
		var authors string
		if err := rows.Scan(
			&r.Title, &authors, &r.Year, &r.Abstract,
			&r.CitationCount, &r.InfluentialCitationCount, &r.IsOpenAccess,
			&r.PDFURL, &r.Venue, &r.DOI, &r.SourceID, &r.URL, &r.Source, &r.QualityScore,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if authors != "" {
			r.Authors = strings.Split(authors, "; ")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
