// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores previously submitted argument values per
// (command, argument) pair and recalls them most recent first.
//
// Three implementations of the commands.History interface are provided:
//
//   - MemoryStore: process-local, for tests and throwaway sessions
//   - FileStore: a JSON file written atomically on every add
//   - SQLiteStore: a WAL-mode SQLite database for large histories
//
// All three deduplicate by value: re-submitting a value refreshes its
// recency instead of adding a second entry.
package history
