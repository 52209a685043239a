package xref

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS xref_cache (
	key     TEXT PRIMARY KEY,
	tmdb_id INTEGER NOT NULL,
	title   TEXT NOT NULL DEFAULT ''
)`

// SQLiteStore persists mappings in a single table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer avoids SQLITE_BUSY; ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore uses db and makes sure the cache table exists.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create xref_cache table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Mapping, bool, error) {
	var m Mapping
	err := s.db.QueryRowContext(ctx,
		"SELECT tmdb_id, title FROM xref_cache WHERE key = ?", key,
	).Scan(&m.TMDBID, &m.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return Mapping{}, false, nil
	}
	if err != nil {
		return Mapping{}, false, fmt.Errorf("cache load: %w", err)
	}
	return m, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, m Mapping) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO xref_cache (key, tmdb_id, title)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET tmdb_id = excluded.tmdb_id, title = excluded.title`,
		key, m.TMDBID, m.Title,
	)
	if err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
