// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the in-memory task board behind the demo shell.
package tasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// ERRORS
// ============================================================================

var (
	// ErrNotFound indicates no task matched the given ID or prefix.
	ErrNotFound = errors.New("task not found")

	// ErrAmbiguousID indicates an ID prefix matched more than one task.
	ErrAmbiguousID = errors.New("ambiguous task id")
)

// ============================================================================
// BOARD
// ============================================================================

// Board holds tasks in creation order and guards them with a mutex. All
// accessors return clones, so callers can hold results across later
// mutations without racing.
type Board struct {
	mu    sync.RWMutex
	tasks []*Task
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Add creates a task in the todo column and returns a copy of it.
func (b *Board) Add(title string, hours float64, labels []string) *Task {
	now := time.Now()
	t := &Task{
		ID:      uuid.New().String(),
		Title:   title,
		Status:  StatusTodo,
		Hours:   hours,
		Created: now,
		Updated: now,
	}
	for _, l := range labels {
		addLabel(t, l)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, t)
	return t.Clone()
}

// Get returns a copy of the task matching the given ID. A unique ID
// prefix is accepted, so the eight-character short form works.
func (b *Board) Get(id string) (*Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, err := b.find(id)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// SetStatus moves a task to a new column and returns the updated copy.
// Moves are validated against Transitions.
func (b *Board) SetStatus(id string, status Status) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.find(id)
	if err != nil {
		return nil, err
	}
	if !canMove(t.Status, status) {
		return nil, fmt.Errorf("cannot move task from %s to %s", t.Status, status)
	}
	t.Status = status
	t.Updated = time.Now()
	return t.Clone(), nil
}

// SetHours replaces a task's hour estimate and returns the updated copy.
func (b *Board) SetHours(id string, hours float64) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.find(id)
	if err != nil {
		return nil, err
	}
	t.Hours = hours
	t.Updated = time.Now()
	return t.Clone(), nil
}

// AddNote appends a note to a task and returns the updated copy.
func (b *Board) AddNote(id, note string) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.find(id)
	if err != nil {
		return nil, err
	}
	t.Notes = append(t.Notes, note)
	t.Updated = time.Now()
	return t.Clone(), nil
}

// Label attaches a label to a task and returns the updated copy. Labels
// already present are left alone.
func (b *Board) Label(id, label string) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.find(id)
	if err != nil {
		return nil, err
	}
	if addLabel(t, label) {
		t.Updated = time.Now()
	}
	return t.Clone(), nil
}

// Delete removes a task from the board.
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.find(id)
	if err != nil {
		return err
	}
	for i, cur := range b.tasks {
		if cur == t {
			b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// ============================================================================
// QUERIES
// ============================================================================

// List returns copies of all tasks in the given column, in creation
// order. An empty status returns the whole board.
func (b *Board) List(status Status) []*Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// Search returns copies of tasks whose title, labels, or notes contain
// the query, compared case-insensitively.
func (b *Board) Search(query string) []*Task {
	q := strings.ToLower(query)

	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Task
	for _, t := range b.tasks {
		if matches(t, q) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Counts returns the number of tasks per status. Every status is present
// in the result, including empty columns.
func (b *Board) Counts() map[Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(map[Status]int, 3)
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, t := range b.tasks {
		counts[t.Status]++
	}
	return counts
}

// Labels returns all distinct labels on the board, sorted.
func (b *Board) Labels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, t := range b.tasks {
		for _, l := range t.Labels {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	sort.Strings(out)
	return out
}

// IDs returns every task ID in creation order.
func (b *Board) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.tasks))
	for i, t := range b.tasks {
		out[i] = t.ID
	}
	return out
}

// Len returns the number of tasks on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tasks)
}

// Summary returns a one-line column breakdown for status displays.
func (b *Board) Summary() string {
	counts := b.Counts()
	return fmt.Sprintf("Todo: %d | Doing: %d | Done: %d",
		counts[StatusTodo], counts[StatusDoing], counts[StatusDone])
}

// ============================================================================
// HELPERS
// ============================================================================

// find resolves an ID or unique ID prefix to a task. Caller must hold
// the lock.
func (b *Board) find(id string) (*Task, error) {
	var hit *Task
	for _, t := range b.tasks {
		if t.ID == id {
			return t, nil
		}
		if strings.HasPrefix(t.ID, id) {
			if hit != nil {
				return nil, fmt.Errorf("%w: %s matches multiple tasks", ErrAmbiguousID, id)
			}
			hit = t
		}
	}
	if hit == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return hit, nil
}

// matches reports whether a task's text fields contain the lowercased
// query.
func matches(t *Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	for _, l := range t.Labels {
		if strings.Contains(strings.ToLower(l), q) {
			return true
		}
	}
	for _, n := range t.Notes {
		if strings.Contains(strings.ToLower(n), q) {
			return true
		}
	}
	return false
}

// addLabel appends a label unless the task already carries it.
func addLabel(t *Task, label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return false
		}
	}
	t.Labels = append(t.Labels, label)
	return true
}
