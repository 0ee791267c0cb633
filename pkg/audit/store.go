// Package audit persists a local history of tapekeeper runs: one row per
// run plus one row per tape outcome. The store records what the tool did
// so operators can answer "what deleted that tape" later; it is not a
// cache and nothing reads it back into a workflow.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// Config contains settings for the sqlite-backed store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait when the database is locked.
	BusyTimeout time.Duration
}

// Store is the sqlite-backed audit store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the audit database and ensures the
// schema exists.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database %q: %w", cfg.Path, err)
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "audit"),
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if cfg.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return s, nil
}

// RecordRun persists one operation result with its per-tape outcomes in
// a single transaction.
func (s *Store) RecordRun(ctx context.Context, r *vtl.OperationResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, mode, region, execute, started, finished,
			found, eligible, deleted, would_delete, skipped, failed, not_found
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, string(r.Mode), r.Region, r.Execute, r.Started, r.Finished,
		r.Found, r.Eligible, r.Deleted, r.WouldDelete, r.Skipped, r.Failed, r.NotFound,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, o := range r.Outcomes {
		var errText string
		if o.Err != nil {
			errText = o.Err.Error()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outcomes (run_id, seq, barcode, arn, status, action, reason, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, i, o.Barcode, o.ARN, string(o.Status), string(o.Action), o.Reason, errText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome: %w", err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of run history.
type RunSummary struct {
	RunID       string
	Mode        string
	Region      string
	Execute     bool
	Started     time.Time
	Found       int
	Deleted     int
	WouldDelete int
	Failed      int
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, region, execute, started, found, deleted, would_delete, failed
		FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Mode, &r.Region, &r.Execute, &r.Started,
			&r.Found, &r.Deleted, &r.WouldDelete, &r.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
