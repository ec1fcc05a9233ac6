package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"hubrr/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	name TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// SQLiteStore keeps key material in a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// Single connection: writers are serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		name, value)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *SQLiteStore) PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (name, value) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, value); err != nil {
		return nil, fmt.Errorf("%w: claim %s: %v", domain.ErrStorage, name, err)
	}
	v, ok, err := s.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: claim %s: %v", domain.ErrStorage, name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: claim %s: row vanished", domain.ErrStorage, name)
	}
	return v, nil
}

var _ domain.KeyStore = (*SQLiteStore)(nil)
