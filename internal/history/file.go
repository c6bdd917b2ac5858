// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores previously submitted argument values.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/slashline/internal/commands"
	"github.com/jeranaias/slashline/internal/util"
)

// FileStore persists history to one JSON file, written atomically on
// every add so a crash never leaves a torn file. A missing or corrupt
// file loads as empty history.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]map[string]entryMap
	last int64
}

var _ commands.History = (*FileStore)(nil)

// NewFileStore opens (or initializes) the store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	s := &FileStore{
		path: path,
		data: make(map[string]map[string]entryMap),
	}
	s.load()
	return s, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// load reads the backing file. Unreadable or malformed content is
// discarded rather than failing the session.
func (s *FileStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var data map[string]map[string]entryMap
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return
	}
	s.data = data
	for _, args := range data {
		for _, entries := range args {
			for _, ts := range entries {
				if ts > s.last {
					s.last = ts
				}
			}
		}
	}
}

// Add records a value and flushes the whole store to disk.
func (s *FileStore) Add(command, arg, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args, ok := s.data[command]
	if !ok {
		args = make(map[string]entryMap)
		s.data[command] = args
	}
	entries, ok := args[arg]
	if !ok {
		entries = make(entryMap)
		args[arg] = entries
	}
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	entries[value] = now

	return s.save()
}

// Get returns values for the pair, most recent first, capped at limit.
// A non-positive limit returns everything.
func (s *FileStore) Get(command, arg string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.data[command][arg], limit)
}

// save writes the store atomically. Callers hold the write lock.
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, raw, 0644)
}
