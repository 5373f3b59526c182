// Package store caches fetched catalog collections in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tuitable/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for cached catalog payloads.
type Store struct {
	db *sql.DB
}

// Collection is a cached copy of one catalog collection.
type Collection struct {
	Name      string
	FetchedAt time.Time
	Lectures  []model.Lecture
}

// CollectionInfo describes a cached collection without its payload.
type CollectionInfo struct {
	Name        string
	FetchedAt   time.Time
	RecordCount int
	SizeBytes   int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog_collections (
			name TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_collections_fetched_at ON catalog_collections(fetched_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PutCollection replaces the cached copy of a collection.
func (s *Store) PutCollection(ctx context.Context, name string, fetchedAt time.Time, lectures []model.Lecture) error {
	payload, err := encodeLectures(lectures)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_collections (name, fetched_at, record_count, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			record_count = excluded.record_count,
			payload = excluded.payload`,
		name,
		fetchedAt.UTC().Format(time.RFC3339Nano),
		len(lectures),
		payload,
	)
	return err
}

// GetCollection returns the cached collection. The boolean is false when the
// collection has never been cached.
func (s *Store) GetCollection(ctx context.Context, name string) (Collection, bool, error) {
	var fetchedAt string
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM catalog_collections WHERE name = ?`, name,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{}, false, nil
	}
	if err != nil {
		return Collection{}, false, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return Collection{}, false, fmt.Errorf("failed to parse fetched_at for %s: %w", name, err)
	}
	lectures, err := decodeLectures(payload)
	if err != nil {
		return Collection{}, false, err
	}
	return Collection{Name: name, FetchedAt: parsed, Lectures: lectures}, true, nil
}

// ListCollections returns metadata for every cached collection, oldest first.
func (s *Store) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, fetched_at, record_count, length(payload)
		 FROM catalog_collections
		 ORDER BY fetched_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		var fetchedAt string
		if err := rows.Scan(&info.Name, &fetchedAt, &info.RecordCount, &info.SizeBytes); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, err
		}
		info.FetchedAt = parsed
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Invalidate drops the cached copies of the named collections, or all of them
// when no name is given.
func (s *Store) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM catalog_collections`)
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_collections WHERE name = ?`, name); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
			return err
		}
	}
	return tx.Commit()
}
