// Package db provides database connection management for the on-device store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with Rentnest-specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the on-device SQLite database. The database is opened with:
// - WAL mode for concurrent reads/writes
// - Foreign key constraints enabled
// - A single writer connection (SQLite limitation)
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rentnest.db")

	// modernc.org/sqlite is pure Go; mobile builds cannot use CGO drivers.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// migrate creates the keyed store schema. The sync core persists pending
// records and the sync log as JSON documents under fixed keys.
func migrate(db *sql.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
