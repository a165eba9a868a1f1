package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SessionStore is an in-memory SQLite journal.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore opens a fresh in-memory journal.
func NewSessionStore() (*SessionStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database, so pin the pool
	// to one connection that never expires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SessionStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SessionStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		generation INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT,
		items INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database, discarding the journal.
func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends run to the journal.
func (s *SessionStore) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (kind, generation, started_at, duration_ms, outcome, message, items)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(run.Kind), int64(run.Generation), run.StartedAt.UTC(), run.Duration.Milliseconds(),
		string(run.Outcome), run.Message, run.Items)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (s *SessionStore) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, generation, started_at, duration_ms, outcome, COALESCE(message, ''), items
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			kind       string
			outcome    string
			generation int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &kind, &generation, &r.StartedAt, &durationMS, &outcome, &r.Message, &r.Items); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Kind = RunKind(kind)
		r.Outcome = Outcome(outcome)
		r.Generation = uint64(generation)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
