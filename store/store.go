// Package store persists finished result bundles to SQLite. The pipeline
// treats it as an opaque sink; nothing in the orchestration layer depends
// on this schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/draftflow/draftflow-go/units"
)

// Store is a SQLite-backed result sink.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path and creates the schema if
// needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT UNIQUE NOT NULL,
			approved BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		);
		CREATE TABLE IF NOT EXISTS metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(session_id);
		CREATE INDEX IF NOT EXISTS idx_metrics_session ON metrics(session_id);
	`)
	return err
}

// Save implements units.ResultSink. The whole bundle is written in one
// transaction.
func (s *Store) Save(ctx context.Context, bundle units.ResultBundle) error {
	if bundle.SessionID == "" {
		return fmt.Errorf("store: bundle has no session id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := bundle.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, approved, created_at) VALUES (?, ?, ?)`,
		bundle.SessionID, bundle.Approved, createdAt); err != nil {
		return fmt.Errorf("store: insert session: %w", err)
	}
	for kind, content := range bundle.Documents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (session_id, kind, content, created_at) VALUES (?, ?, ?, ?)`,
			bundle.SessionID, kind, content, createdAt); err != nil {
			return fmt.Errorf("store: insert document %s: %w", kind, err)
		}
	}
	for name, value := range bundle.Metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metrics (session_id, name, value) VALUES (?, ?, ?)`,
			bundle.SessionID, name, value); err != nil {
			return fmt.Errorf("store: insert metric %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// SessionRecord is one row of the session history listing.
type SessionRecord struct {
	SessionID string
	Approved  bool
	CreatedAt time.Time
	Documents int
}

// RecentSessions lists the most recently stored sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.approved, s.created_at, COUNT(d.id)
		FROM sessions s
		LEFT JOIN documents d ON d.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.SessionID, &r.Approved, &r.CreatedAt, &r.Documents); err != nil {
			return nil, fmt.Errorf("store: scan session: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Document returns the stored content of one document kind for a session.
func (s *Store) Document(ctx context.Context, sessionID, kind string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE session_id = ? AND kind = ? ORDER BY id DESC LIMIT 1`,
		sessionID, kind).Scan(&content)
	if err != nil {
		return "", fmt.Errorf("store: load document %s/%s: %w", sessionID, kind, err)
	}
	return content, nil
}
