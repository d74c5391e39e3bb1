// Package store persists an audit trail of pipeline runs to SQLite.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

// Run is one recorded pipeline run.
type Run struct {
	ID         string    `db:"id"`
	Path       string    `db:"path"`
	Outcome    string    `db:"outcome"`
	StagesRun  int       `db:"stages_run"`
	DurationNS int64     `db:"duration_ns"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store writes and queries the run audit trail. It implements
// pipeline.Observer so it can be attached directly to an engine.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ pipeline.Observer = (*Store)(nil)

// Open opens (and if needed initializes) the audit database at path.
// ":memory:" is supported for tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
id TEXT PRIMARY KEY,
path TEXT NOT NULL,
outcome TEXT NOT NULL,
stages_run INTEGER NOT NULL,
duration_ns INTEGER NOT NULL,
created_at TIMESTAMP NOT NULL
)`)
	return err
}

// RecordRun persists one run.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, path, outcome, stages_run, duration_ns, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Path, run.Outcome, run.StagesRun, run.DurationNS, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, path, outcome, stages_run, duration_ns, created_at
FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

// RunCompleted implements pipeline.Observer. Persistence failures are
// logged, never surfaced to the pipeline.
func (s *Store) RunCompleted(ctx context.Context, stats pipeline.RunStats) {
	err := s.RecordRun(ctx, &Run{
		Path:       stats.Path,
		Outcome:    string(stats.Outcome),
		StagesRun:  stats.StagesRun,
		DurationNS: int64(stats.Duration),
	})
	if err != nil {
		s.logger.Error("failed to record run", slog.String("error", err.Error()))
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
