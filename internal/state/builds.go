package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Build is one recorded site build.
type Build struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
	Rendered   int
	Skipped    int
}

// Duration is the wall time the build took.
func (b *Build) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}

// RecordBuild stores a finished build. A zero FinishedAt is set to now.
func (s *Store) RecordBuild(ctx context.Context, b *Build) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if b.FinishedAt.IsZero() {
		b.FinishedAt = now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, started_at, finished_at, pages, rendered, skipped) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartedAt.UTC(), b.FinishedAt.UTC(), b.Pages, b.Rendered, b.Skipped,
	)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}
	return nil
}

// LastBuild returns the most recently started build, or nil when none was recorded.
func (s *Store) LastBuild(ctx context.Context) (*Build, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	b := &Build{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, pages, rendered, skipped FROM builds ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&b.ID, &b.StartedAt, &b.FinishedAt, &b.Pages, &b.Rendered, &b.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last build: %w", err)
	}
	return b, nil
}
