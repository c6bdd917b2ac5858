// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores previously submitted argument values.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/slashline/internal/commands"
)

// entryMap is value -> last-use stamp for one (command, arg) pair.
type entryMap map[string]int64

// MemoryStore keeps history in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]entryMap // command -> arg -> entries
	last int64
}

var _ commands.History = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]entryMap)}
}

// Add records a value, refreshing its recency if already present.
func (s *MemoryStore) Add(command, arg, value string) error {
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
	entries[value] = s.stamp()
	return nil
}

// Get returns values for the pair, most recent first, capped at limit.
// A non-positive limit returns everything.
func (s *MemoryStore) Get(command, arg string, limit int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.data[command][arg], limit)
}

// stamp returns a strictly increasing timestamp so recency ordering is
// total even when the clock does not advance between adds. Callers hold
// the write lock.
func (s *MemoryStore) stamp() int64 {
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}

// sortedValues orders an entry map newest first, values ascending on
// equal stamps, and applies the limit.
func sortedValues(entries entryMap, limit int) []string {
	if len(entries) == 0 {
		return nil
	}
	type pair struct {
		value string
		stamp int64
	}
	pairs := make([]pair, 0, len(entries))
	for v, ts := range entries {
		pairs = append(pairs, pair{v, ts})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].stamp != pairs[j].stamp {
			return pairs[i].stamp > pairs[j].stamp
		}
		return pairs[i].value < pairs[j].value
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.value
	}
	return out
}
