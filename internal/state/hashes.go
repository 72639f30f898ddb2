package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PageHash returns the stored render hash for a page path, or "" when unknown.
func (s *Store) PageHash(ctx context.Context, path string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM page_hashes WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get page hash: %w", err)
	}
	return hash, nil
}

// SetPageHash stores the render hash for a page path.
func (s *Store) SetPageHash(ctx context.Context, path, hash string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_hashes (path, hash, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, updated_at = excluded.updated_at`,
		path, hash, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set page hash: %w", err)
	}
	return nil
}

// ClearPageHashes forgets every page hash so the next build renders everything.
func (s *Store) ClearPageHashes(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM page_hashes`); err != nil {
		return fmt.Errorf("failed to clear page hashes: %w", err)
	}
	return nil
}

// PublishedHash returns the hash of the object last published under key, or "".
func (s *Store) PublishedHash(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM published_objects WHERE key = ?`, key).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get published hash: %w", err)
	}
	return hash, nil
}

// SetPublishedHash records that key was published with the given hash.
func (s *Store) SetPublishedHash(ctx context.Context, key, hash string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO published_objects (key, hash, published_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET hash = excluded.hash, published_at = excluded.published_at`,
		key, hash, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set published hash: %w", err)
	}
	return nil
}

// ForgetPublished removes the record for key, e.g. after the object was pruned.
func (s *Store) ForgetPublished(ctx context.Context, key string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM published_objects WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to forget published object: %w", err)
	}
	return nil
}
