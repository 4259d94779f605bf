package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Dispatch is one recorded workflow dispatch.
type Dispatch struct {
	ID       string    `json:"id"`
	RunID    int64     `json:"runId"`
	Mode     string    `json:"mode"`
	Ref      string    `json:"ref"`
	RunURL   string    `json:"runUrl"`
	QueuedAt time.Time `json:"queuedAt"`
}

// SQLiteStore is the local dispatch ledger, backed by modernc.org/sqlite.
// It exists so operators can answer "what did we kick off, and when"
// without trawling the CI provider's UI.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS spoke_dispatches (
	id        TEXT PRIMARY KEY,
	run_id    INTEGER NOT NULL DEFAULT 0,
	mode      TEXT NOT NULL,
	ref       TEXT NOT NULL,
	run_url   TEXT NOT NULL DEFAULT '',
	queued_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_spoke_dispatches_queued_at ON spoke_dispatches(queued_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordDispatch inserts one ledger row and returns it with its generated id.
func (s *SQLiteStore) RecordDispatch(ctx context.Context, runID int64, mode, ref, runURL string) (*Dispatch, error) {
	d := &Dispatch{
		ID:       uuid.New().String(),
		RunID:    runID,
		Mode:     mode,
		Ref:      ref,
		RunURL:   runURL,
		QueuedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spoke_dispatches (id, run_id, mode, ref, run_url, queued_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.RunID, d.Mode, d.Ref, d.RunURL, d.QueuedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert dispatch")
	}
	return d, nil
}

// ListDispatches returns the most recent dispatches, newest first.
func (s *SQLiteStore) ListDispatches(ctx context.Context, limit int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, mode, ref, run_url, queued_at FROM spoke_dispatches ORDER BY queued_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list dispatches")
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var d Dispatch
		if err := rows.Scan(&d.ID, &d.RunID, &d.Mode, &d.Ref, &d.RunURL, &d.QueuedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dispatch")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate dispatches")
}

// CountQueuedSince counts dispatches recorded at or after the given time.
func (s *SQLiteStore) CountQueuedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM spoke_dispatches WHERE queued_at >= ?`,
		since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count dispatches")
	}
	return count, nil
}
