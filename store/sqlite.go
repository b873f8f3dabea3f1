package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores the backups in a table. Every Put is kept as a new version and
// Get returns the latest one.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens, and creates if needed, the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ledgers (
			key        TEXT    NOT NULL,
			version    INTEGER NOT NULL,
			data       BLOB    NOT NULL,
			saved_at   INTEGER NOT NULL,
			PRIMARY KEY (key, version)
		);
	`)
	return err
}

// Get returns the latest content saved under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM ledgers WHERE key = ? ORDER BY version DESC LIMIT 1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return data, nil
}

// Put saves a new version of key.
func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledgers (key, version, data, saved_at)
		SELECT ?, COALESCE(MAX(version), 0) + 1, ?, ? FROM ledgers WHERE key = ?`,
		key, data, time.Now().Unix(), key)
	if err != nil {
		return fmt.Errorf("sqlite put %s: %w", key, err)
	}
	return nil
}

// Versions returns the number of versions saved under key.
func (s *SQLite) Versions(ctx context.Context, key string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledgers WHERE key = ?`, key).Scan(&n)
	return n, err
}

// Prune removes all but the keep latest versions of key.
func (s *SQLite) Prune(ctx context.Context, key string, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM ledgers WHERE key = ? AND version <= (
			SELECT COALESCE(MAX(version), 0) - ? FROM ledgers WHERE key = ?
		)`, key, keep, key)
	if err != nil {
		return fmt.Errorf("sqlite prune %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
