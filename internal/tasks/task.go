// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the in-memory task board behind the demo shell.
package tasks

import (
	"fmt"
	"time"
)

// ============================================================================
// STATUS
// ============================================================================

// Status identifies the board column a task sits in.
type Status string

const (
	// StatusTodo is the initial status for new tasks.
	StatusTodo Status = "todo"

	// StatusDoing marks a task currently being worked on.
	StatusDoing Status = "doing"

	// StatusDone marks a finished task.
	StatusDone Status = "done"
)

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts raw text into a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusTodo, StatusDoing, StatusDone:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown status %q (todo, doing, done)", raw)
}

// Statuses returns all statuses in board column order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusDoing, StatusDone}
}

// Transitions returns the statuses a task may move to from the given
// status. Finished tasks can only be reopened.
func Transitions(from Status) []Status {
	switch from {
	case StatusTodo:
		return []Status{StatusDoing}
	case StatusDoing:
		return []Status{StatusDone, StatusTodo}
	case StatusDone:
		return []Status{StatusTodo}
	}
	return nil
}

// canMove reports whether a task may change from one status to another.
// Setting the current status again is always allowed.
func canMove(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range Transitions(from) {
		if s == to {
			return true
		}
	}
	return false
}

// ============================================================================
// TASK
// ============================================================================

// Task is one item on the board. Tasks are passive values: the board owns
// all mutation and hands out clones, so a Task held by a caller never
// changes underneath it.
type Task struct {
	ID      string
	Title   string
	Status  Status
	Hours   float64
	Labels  []string
	Notes   []string
	Created time.Time
	Updated time.Time
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Labels = append([]string(nil), t.Labels...)
	c.Notes = append([]string(nil), t.Notes...)
	return &c
}

// ShortID returns the first eight characters of a task ID, the form the
// shell displays and accepts for lookup.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
