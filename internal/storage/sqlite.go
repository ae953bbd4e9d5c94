package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	namespace  TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLite persists snapshots in a single-table SQLite database, one row per
// namespace.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Load reads the namespace snapshot, returning nil when absent.
func (s *SQLite) Load(namespace string) ([]byte, error) {
	var data []byte
	err := s.db.Get(&data, "SELECT data FROM snapshots WHERE namespace = ?", namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", namespace, err)
	}
	return data, nil
}

// Save upserts the namespace snapshot.
func (s *SQLite) Save(namespace string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (namespace, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		namespace, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", namespace, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
