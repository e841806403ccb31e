// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "citegraph-cache.db"

// mirror is the durable cache tier: a single-table SQLite database.
type mirror struct {
	db *sql.DB
}

// openMirror opens or creates the cache database at dir/citegraph-cache.db.
func openMirror(dir string) (*mirror, error) {
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &mirror{db: db}, nil
}

func (m *mirror) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return value, true, nil
}

func (m *mirror) put(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO entries (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, created_at=excluded.created_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (m *mirror) clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

func (m *mirror) close() error {
	return m.db.Close()
}
