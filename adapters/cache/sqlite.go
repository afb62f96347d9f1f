// Package cache stores downloaded archive products in a local SQLite
// file so repeated interactive runs against the same target do not
// re-download the pixel file.
package cache

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a byte-blob cache keyed by archive query string.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Printf("[Cache] failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		log.Printf("[Cache] failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS archive_products (
			key        TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive_products: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the cached payload for key, if present.
func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM archive_products WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Put stores or replaces the payload for key.
func (s *SQLiteStore) Put(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO archive_products (key, payload, created_at) VALUES (?, ?, ?)",
		key, value, time.Now().Unix(),
	)
	return err
}

// Delete removes the payload for key, if present.
func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM archive_products WHERE key = ?", key)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
