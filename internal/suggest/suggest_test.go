// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jeranaias/slashline/internal/commands"
)

// fakeHistory returns canned values for one (command, arg) pair.
type fakeHistory struct {
	command string
	arg     string
	values  []string
}

func (h *fakeHistory) Add(command, arg, value string) error { return nil }

func (h *fakeHistory) Get(command, arg string, limit int) []string {
	if command != h.command || arg != h.arg {
		return nil
	}
	if limit > 0 && len(h.values) > limit {
		return h.values[:limit]
	}
	return h.values
}

func ctxWithPrefix(prefix string) commands.SuggestContext {
	return commands.SuggestContext{Prefix: prefix}
}

// TestChoices tests fixed-list suggestions
func TestChoices(t *testing.T) {
	src := Choices("high", "medium", "low")

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{name: "empty prefix returns all", prefix: "", want: []string{"high", "medium", "low"}},
		{name: "prefix filters", prefix: "h", want: []string{"high"}},
		{name: "full match included", prefix: "low", want: []string{"low"}},
		{name: "no match", prefix: "z", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := src(ctxWithPrefix(tt.prefix))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Choices(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

// TestNumbers tests inclusive stepped ranges
func TestNumbers(t *testing.T) {
	tests := []struct {
		name             string
		start, stop, step int
		prefix           string
		want             []string
	}{
		{name: "inclusive endpoints", start: 0, stop: 10, step: 5, prefix: "", want: []string{"0", "5", "10"}},
		{name: "prefix filters", start: 0, stop: 10, step: 5, prefix: "5", want: []string{"5"}},
		{name: "prefix matches multiple", start: 0, stop: 12, step: 1, prefix: "1", want: []string{"1", "10", "11", "12"}},
		{name: "single point", start: 3, stop: 3, step: 1, prefix: "", want: []string{"3"}},
		{name: "zero step yields nothing", start: 0, stop: 10, step: 0, prefix: "", want: nil},
		{name: "negative range yields nothing", start: 5, stop: 1, step: 1, prefix: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Numbers(tt.start, tt.stop, tt.step)(ctxWithPrefix(tt.prefix))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Numbers(%d,%d,%d)(%q) = %v, want %v",
					tt.start, tt.stop, tt.step, tt.prefix, got, tt.want)
			}
		})
	}
}

// TestPaths tests filesystem suggestions with extension filtering
func TestPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"report.md", "data.csv", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("extension filter keeps directories", func(t *testing.T) {
		src := Paths(".md")
		got := src(ctxWithPrefix(dir + string(os.PathSeparator)))
		want := []string{
			filepath.Join(dir, "archive") + string(os.PathSeparator),
			filepath.Join(dir, "notes.md"),
			filepath.Join(dir, "report.md"),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Paths(.md) = %v, want %v", got, want)
		}
	})

	t.Run("no filter lists everything", func(t *testing.T) {
		src := Paths()
		got := src(ctxWithPrefix(dir + string(os.PathSeparator)))
		if len(got) != 4 {
			t.Errorf("Paths() = %v, want 4 entries", got)
		}
	})

	t.Run("unreadable prefix yields nothing", func(t *testing.T) {
		src := Paths()
		if got := src(ctxWithPrefix(filepath.Join(dir, "missing", "x"))); got != nil {
			t.Errorf("Paths() = %v, want nil", got)
		}
	})
}

// TestFromHistory tests history recall with prefix filtering
func TestFromHistory(t *testing.T) {
	hist := &fakeHistory{
		command: "/task",
		arg:     "name",
		values:  []string{"Bar", "Foo", "Baz"},
	}

	ctx := commands.SuggestContext{
		Command: "/task",
		ArgName: "name",
		History: hist,
	}

	if got := FromHistory(0)(ctx); !reflect.DeepEqual(got, []string{"Bar", "Foo", "Baz"}) {
		t.Errorf("FromHistory = %v", got)
	}

	ctx.Prefix = "Ba"
	if got := FromHistory(0)(ctx); !reflect.DeepEqual(got, []string{"Bar", "Baz"}) {
		t.Errorf("FromHistory(Ba) = %v", got)
	}

	ctx.Prefix = ""
	if got := FromHistory(2)(ctx); !reflect.DeepEqual(got, []string{"Bar", "Foo"}) {
		t.Errorf("FromHistory limit 2 = %v", got)
	}

	ctx.History = nil
	if got := FromHistory(0)(ctx); got != nil {
		t.Errorf("FromHistory without store = %v, want nil", got)
	}
}

// TestDependent tests parent-driven suggestions
func TestDependent(t *testing.T) {
	table := map[string][]string{
		"alpha": {"core", "ml"},
		"beta":  {"etl"},
	}
	src := Dependent("project", func(parent string, ctx commands.SuggestContext) []string {
		return table[parent]
	})

	ctx := commands.SuggestContext{Siblings: map[string]string{"project": "alpha"}}
	if got := src(ctx); !reflect.DeepEqual(got, []string{"core", "ml"}) {
		t.Errorf("Dependent(alpha) = %v", got)
	}

	ctx.Siblings["project"] = "beta"
	if got := src(ctx); !reflect.DeepEqual(got, []string{"etl"}) {
		t.Errorf("Dependent(beta) = %v", got)
	}

	ctx.Siblings = map[string]string{}
	if got := src(ctx); got != nil {
		t.Errorf("Dependent(unbound) = %v, want nil", got)
	}
}
