// Package sqlitestore is a persistent store.Store backend over
// modernc.org/sqlite (pure Go, no cgo), the backend the abstract §4.7
// interface was designed to admit (SPEC_FULL.md §3).
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mrSundvoll/xun/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	call_hash    BLOB NOT NULL,
	version_hash BLOB NOT NULL,
	value        BLOB NOT NULL,
	PRIMARY KEY (call_hash, version_hash)
);
`

// Store is a sqlite-backed store.Store. One (call_hash, version_hash)
// row per stored result, matching the Store key of spec.md §3.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and
// ensures the results table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func keyHashes(key store.Key) (callHash, versionHash []byte) {
	ch := key.Call.Hash()
	return ch[:], key.Version[:]
}

func (s *Store) Contains(key store.Key) (bool, error) {
	callHash, versionHash := keyHashes(key)
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM results WHERE call_hash = ? AND version_hash = ?`,
		callHash, versionHash,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlitestore: contains: %w", err)
	}
	return true, nil
}

func (s *Store) Get(key store.Key) ([]byte, error) {
	callHash, versionHash := keyHashes(key)
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM results WHERE call_hash = ? AND version_hash = ?`,
		callHash, versionHash,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlitestore: no value for key")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: get: %w", err)
	}
	return value, nil
}

// Put writes value for key, replacing any existing row — spec.md §4.7's
// "latest write wins" under INSERT OR REPLACE.
func (s *Store) Put(key store.Key, value []byte) error {
	callHash, versionHash := keyHashes(key)
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO results (call_hash, version_hash, value) VALUES (?, ?, ?)`,
		callHash, versionHash, value,
	)
	if err != nil {
		return fmt.Errorf("sqlitestore: put: %w", err)
	}
	return nil
}
