// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the in-memory task board behind the demo shell.
//
// This package implements the pure domain logic the demo commands operate
// on: tasks with a status, estimated hours, labels, and notes, held on a
// thread-safe board. It performs no I/O; persistence and presentation
// belong to the callers.
//
// # Key Types
//
//   - Task: One item on the board with status, hours, labels, and notes
//   - Status: Board column enumeration (todo, doing, done)
//   - Board: Thread-safe task collection with lookup by ID prefix
//
// # Usage
//
// Create a board and add a task:
//
//	board := tasks.NewBoard()
//	task := board.Add("Fix login bug", 3, []string{"auth"})
//
// Move it along:
//
//	task, err := board.SetStatus(task.ID, tasks.StatusDoing)
//	if err != nil {
//	    log.Printf("move failed: %v", err)
//	}
//
// Status changes are validated against the board's transition rules; see
// Transitions for the legal moves from each status.
package tasks
