// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores previously submitted argument values.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/slashline/internal/commands"
)

// SQLiteStore keeps history in a WAL-mode SQLite database. Suited to
// long-lived installations where the JSON file would grow unwieldy.
type SQLiteStore struct {
	db *sql.DB

	mu   sync.Mutex
	last int64
}

var _ commands.History = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and prepares the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS arg_history (
			command TEXT NOT NULL,
			arg     TEXT NOT NULL,
			value   TEXT NOT NULL,
			used_at INTEGER NOT NULL,
			PRIMARY KEY (command, arg, value)
		);
		CREATE INDEX IF NOT EXISTS idx_arg_history_recency
			ON arg_history (command, arg, used_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add records a value, refreshing its recency if already present.
func (s *SQLiteStore) Add(command, arg, value string) error {
	s.mu.Lock()
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO arg_history (command, arg, value, used_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (command, arg, value) DO UPDATE SET used_at = excluded.used_at`,
		command, arg, value, now)
	return err
}

// Get returns values for the pair, most recent first, capped at limit.
// A non-positive limit returns everything; lookup failures read as no
// history rather than breaking completion.
func (s *SQLiteStore) Get(command, arg string, limit int) []string {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := s.db.Query(`
		SELECT value FROM arg_history
		WHERE command = ? AND arg = ?
		ORDER BY used_at DESC, value ASC
		LIMIT ?`,
		command, arg, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}
