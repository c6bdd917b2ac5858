// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history stores previously submitted argument values.
package history

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/slashline/internal/commands"
)

// =============================================================================
// SHARED CONTRACT
// =============================================================================

// exerciseStore runs the behavior every implementation must share.
func exerciseStore(t *testing.T, store commands.History) {
	t.Helper()

	for _, v := range []string{"Foo", "Bar", "Baz"} {
		if err := store.Add("/task", "name", v); err != nil {
			t.Fatalf("Add(%s): %v", v, err)
		}
	}

	if got := store.Get("/task", "name", 10); !reflect.DeepEqual(got, []string{"Baz", "Bar", "Foo"}) {
		t.Errorf("Get = %v, want most recent first", got)
	}

	// Re-adding refreshes recency instead of duplicating
	if err := store.Add("/task", "name", "Foo"); err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if got := store.Get("/task", "name", 10); !reflect.DeepEqual(got, []string{"Foo", "Baz", "Bar"}) {
		t.Errorf("Get after re-add = %v", got)
	}

	// Limit caps the result
	if got := store.Get("/task", "name", 2); !reflect.DeepEqual(got, []string{"Foo", "Baz"}) {
		t.Errorf("Get with limit = %v", got)
	}

	// Pairs are isolated from each other
	if err := store.Add("/task", "prio", "high"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add("/note", "name", "Other"); err != nil {
		t.Fatal(err)
	}
	if got := store.Get("/task", "prio", 10); !reflect.DeepEqual(got, []string{"high"}) {
		t.Errorf("Get(/task, prio) = %v", got)
	}
	if got := store.Get("/note", "name", 10); !reflect.DeepEqual(got, []string{"Other"}) {
		t.Errorf("Get(/note, name) = %v", got)
	}

	// Unknown pairs read as empty
	if got := store.Get("/nope", "name", 10); len(got) != 0 {
		t.Errorf("Get for unknown pair = %v, want empty", got)
	}
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	exerciseStore(t, store)

	// Everything survives a reopen
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Get("/task", "name", 10); !reflect.DeepEqual(got, []string{"Foo", "Baz", "Bar"}) {
		t.Errorf("reopened Get = %v", got)
	}

	// File is valid JSON on disk
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	if !strings.Contains(string(raw), "/task") {
		t.Errorf("backing file missing command key: %s", raw)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("corrupt file must not fail the session: %v", err)
	}
	if got := store.Get("/task", "name", 10); len(got) != 0 {
		t.Errorf("Get from corrupt file = %v, want empty", got)
	}

	if err := store.Add("/task", "name", "Fresh"); err != nil {
		t.Fatalf("Add after corrupt load: %v", err)
	}
	if got := store.Get("/task", "name", 10); !reflect.DeepEqual(got, []string{"Fresh"}) {
		t.Errorf("Get = %v", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.Add("/task", "name", "Persisted"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got := reopened.Get("/task", "name", 10); !reflect.DeepEqual(got, []string{"Persisted"}) {
		t.Errorf("reopened Get = %v", got)
	}
}
