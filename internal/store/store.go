// Package store caches rendered page images in SQLite so scaled scans
// survive restarts instead of being re-rendered on every request.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB holding the rendered-image cache.
type Store struct {
	*sql.DB
	path string
}

// Open creates or opens the cache database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory cache (useful for testing).
func OpenMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory cache: %w", err)
	}

	s := &Store{DB: sqlDB, path: ":memory:"}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.Exec(`
		CREATE TABLE IF NOT EXISTS rendered_images (
			paper      TEXT    NOT NULL,
			page       INTEGER NOT NULL,
			zoom       INTEGER NOT NULL,
			marks      TEXT    NOT NULL,
			data       BLOB    NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (paper, page, zoom, marks)
		)`)
	return err
}

// GetImage looks up a cached rendering. The boolean reports a hit.
func (s *Store) GetImage(paper string, page, zoom int, marks string) ([]byte, bool, error) {
	var data []byte
	err := s.QueryRow(
		`SELECT data FROM rendered_images WHERE paper = ? AND page = ? AND zoom = ? AND marks = ?`,
		paper, page, zoom, marks,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return data, true, nil
}

// PutImage stores a rendering, replacing any previous entry for the key.
func (s *Store) PutImage(paper string, page, zoom int, marks string, data []byte) error {
	_, err := s.Exec(
		`INSERT INTO rendered_images (paper, page, zoom, marks, data) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (paper, page, zoom, marks) DO UPDATE SET data = excluded.data, created_at = CURRENT_TIMESTAMP`,
		paper, page, zoom, marks, data,
	)
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}

// Purge drops all cached renderings for a newspaper.
func (s *Store) Purge(paper string) error {
	_, err := s.Exec(`DELETE FROM rendered_images WHERE paper = ?`, paper)
	if err != nil {
		return fmt.Errorf("cache purge: %w", err)
	}
	return nil
}
