// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the slashline packages.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING TESTS
// =============================================================================

// TestTruncateWidth tests display-column truncation
func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "fits unchanged", input: "hello", maxWidth: 10, want: "hello"},
		{name: "truncated with ellipsis", input: "hello world", maxWidth: 8, want: "hello..."},
		{name: "cjk fits unchanged", input: "日本語テキスト", maxWidth: 20, want: "日本語テキスト"},
		{name: "cjk truncates on columns", input: "日本語テキスト", maxWidth: 9, want: "日本語..."},
		{name: "zero width", input: "hello", maxWidth: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWidth(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

// TestStringWidth tests column counting
func TestStringWidth(t *testing.T) {
	if got := StringWidth("hello"); got != 5 {
		t.Errorf("StringWidth(hello) = %d, want 5", got)
	}
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
	if got := StringWidth(""); got != 0 {
		t.Errorf("StringWidth(empty) = %d, want 0", got)
	}
}

// TestPadRight tests width padding
func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight(ab, 5) = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight(abcdef, 3) = %q, want unchanged", got)
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	t.Run("writes new file in new directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
		if err := AtomicWriteFile(path, []byte("payload"), 0644); err != nil {
			t.Fatalf("AtomicWriteFile: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(got) != "payload" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("replaces existing file completely", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if err := AtomicWriteFile(path, []byte("first version"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "v2" {
			t.Errorf("content = %q, want v2", got)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		if err := AtomicWriteFile(filepath.Join(dir, "out.json"), []byte("data"), 0644); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want just the target", len(entries))
		}
	})

	t.Run("applies permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		if err := AtomicWriteFile(path, []byte("data"), 0600); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
		}
	})
}
