// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

const dbFile = "paper-reader.db"

// Store is the SQLite artifact index. It doubles as a result sink and as
// the query surface behind the artifacts command and failed-subset
// re-runs.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the artifact database at indexDir/paper-reader.db,
// creating the schema if needed.
func NewStore(indexDir string) (*Store, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			year TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			document_id TEXT PRIMARY KEY REFERENCES documents(id),
			status TEXT NOT NULL,
			extraction TEXT,
			summary TEXT,
			slides TEXT,
			error TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_status ON artifacts(status)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT,
			finished_at TEXT,
			succeeded INTEGER,
			partial INTEGER,
			failed INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Persist upserts the document record and its artifact. Implements the
// orchestrator's ResultSink.
func (s *Store) Persist(ctx context.Context, doc types.Document, art types.AnalysisArtifact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	authorsJSON, _ := json.Marshal(doc.Authors)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, authors, year) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, year=excluded.year`,
		doc.ID, doc.Title, string(authorsJSON), doc.Year,
	); err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO artifacts (document_id, status, extraction, summary, slides, error, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET
			status=excluded.status, extraction=excluded.extraction,
			summary=excluded.summary, slides=excluded.slides,
			error=excluded.error, updated_at=excluded.updated_at`,
		doc.ID, string(art.Status), art.Extraction, art.Summary, art.Slides,
		art.Error, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("upserting artifact: %w", err)
	}

	return tx.Commit()
}

// SaveReport records the aggregate outcome of one batch run.
func (s *Store) SaveReport(ctx context.Context, report *types.BatchReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started_at, finished_at, succeeded, partial, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.Succeeded, report.Partial, report.Failed,
	)
	if err != nil {
		return fmt.Errorf("saving run report: %w", err)
	}
	return nil
}

// ListArtifacts returns stored artifacts, optionally filtered by status,
// ordered by title.
func (s *Store) ListArtifacts(ctx context.Context, status types.AnalysisStatus) ([]types.AnalysisArtifact, error) {
	query := `SELECT a.document_id, d.title, d.authors, a.status, a.extraction, a.summary, a.slides, a.error
		  FROM artifacts a JOIN documents d ON d.id = a.document_id`
	args := []any{}
	if status != "" {
		query += ` WHERE a.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY d.title`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []types.AnalysisArtifact
	for rows.Next() {
		var art types.AnalysisArtifact
		var authorsJSON, status string
		if err := rows.Scan(&art.DocumentID, &art.Title, &authorsJSON, &status,
			&art.Extraction, &art.Summary, &art.Slides, &art.Error); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		art.Status = types.AnalysisStatus(status)
		json.Unmarshal([]byte(authorsJSON), &art.Authors)
		artifacts = append(artifacts, art)
	}
	return artifacts, rows.Err()
}

// FailedExtractions returns, for every document whose last artifact is
// not success, the stored Stage-1 extraction (possibly empty). The
// analyze command uses this to re-run only the failed subset, resuming
// from Stage 2 where an extraction survived.
func (s *Store) FailedExtractions(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, extraction FROM artifacts WHERE status != ?`,
		string(types.StatusSuccess),
	)
	if err != nil {
		return nil, fmt.Errorf("querying failed artifacts: %w", err)
	}
	defer rows.Close()

	failed := make(map[string]string)
	for rows.Next() {
		var id, extraction string
		if err := rows.Scan(&id, &extraction); err != nil {
			return nil, fmt.Errorf("scanning failed artifact: %w", err)
		}
		failed[id] = extraction
	}
	return failed, rows.Err()
}
