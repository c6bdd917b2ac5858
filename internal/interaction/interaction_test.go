// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package interaction provides the prompt resolvers that answer for command
// arguments the input line left unset.
package interaction

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jeranaias/slashline/internal/commands"
)

// =============================================================================
// ANSWER TABLE TESTS
// =============================================================================

func TestAnswerTableLookup(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		label   string
		def     string
		want    string
	}{
		{
			name:    "exact label match",
			answers: map[string]string{"Enter hours": "3"},
			label:   "Enter hours",
			want:    "3",
		},
		{
			name:    "simplified key match",
			answers: map[string]string{"enter_hours": "4"},
			label:   "Enter hours",
			want:    "4",
		},
		{
			name:    "bare argument name match",
			answers: map[string]string{"hours": "5"},
			label:   "Enter hours",
			want:    "5",
		},
		{
			name:    "exact beats simplified beats bare",
			answers: map[string]string{"Enter hours": "1", "enter_hours": "2", "hours": "3"},
			label:   "Enter hours",
			want:    "1",
		},
		{
			name:    "unmatched falls back to default",
			answers: map[string]string{"hours": "5"},
			label:   "Enter title",
			def:     "untitled",
			want:    "untitled",
		},
		{
			name:    "unmatched with no default is empty",
			answers: nil,
			label:   "Enter title",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewAnswerTable(tt.answers)
			got, err := table.AskText(tt.label, tt.def, false)
			if err != nil {
				t.Fatalf("AskText: %v", err)
			}
			if got != tt.want {
				t.Errorf("AskText(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestAnswerTableCanceled(t *testing.T) {
	table := NewAnswerTable(map[string]string{"title": "kept"})
	table.SetCanceled("hours")

	if _, err := table.AskText("Enter hours", "", false); !errors.Is(err, ErrAborted) {
		t.Errorf("canceled key error = %v, want ErrAborted", err)
	}

	// Other keys still answer normally.
	got, err := table.AskText("Enter title", "", false)
	if err != nil || got != "kept" {
		t.Errorf("AskText(Enter title) = %q, %v", got, err)
	}
}

func TestAnswerTableSetAssignment(t *testing.T) {
	table := NewAnswerTable(nil)

	if err := table.SetAssignment("hours=8"); err != nil {
		t.Fatalf("SetAssignment: %v", err)
	}
	got, _ := table.AskText("Enter hours", "", false)
	if got != "8" {
		t.Errorf("answer = %q, want 8", got)
	}

	// Value may itself contain an equals sign.
	if err := table.SetAssignment("query=a=b"); err != nil {
		t.Fatalf("SetAssignment: %v", err)
	}
	got, _ = table.AskText("Enter query", "", false)
	if got != "a=b" {
		t.Errorf("answer = %q, want a=b", got)
	}

	for _, bad := range []string{"noequals", "=value"} {
		if err := table.SetAssignment(bad); err == nil {
			t.Errorf("SetAssignment(%q) should fail", bad)
		}
	}
}

// =============================================================================
// JSON LOADING TESTS
// =============================================================================

func TestLoadAnswers(t *testing.T) {
	data := []byte(`{
		"title": "write docs",
		"hours": 3,
		"urgent": true,
		"labels": ["go", "web"],
		"notes": null
	}`)

	table, err := LoadAnswers(data)
	if err != nil {
		t.Fatalf("LoadAnswers: %v", err)
	}

	checks := []struct {
		label string
		want  string
	}{
		{"Enter title", "write docs"},
		{"Enter hours", "3"},
		{"Enter urgent", "true"},
		{"Enter labels", "go, web"},
	}
	for _, c := range checks {
		got, err := table.AskText(c.label, "", false)
		if err != nil {
			t.Fatalf("AskText(%q): %v", c.label, err)
		}
		if got != c.want {
			t.Errorf("AskText(%q) = %q, want %q", c.label, got, c.want)
		}
	}

	if _, err := table.AskText("Enter notes", "", false); !errors.Is(err, ErrAborted) {
		t.Errorf("null answer error = %v, want ErrAborted", err)
	}
}

func TestLoadAnswersBadInput(t *testing.T) {
	if _, err := LoadAnswers([]byte("not json")); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := LoadAnswers([]byte(`{"nested": {"a": 1}}`)); err == nil {
		t.Error("nested object value should fail")
	}
}

func TestLoadAnswersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte(`{"hours": "2"}`), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadAnswersFile(path)
	if err != nil {
		t.Fatalf("LoadAnswersFile: %v", err)
	}
	got, _ := table.AskText("Enter hours", "", false)
	if got != "2" {
		t.Errorf("answer = %q, want 2", got)
	}

	if _, err := LoadAnswersFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

// =============================================================================
// OBSERVER TESTS
// =============================================================================

func TestObserve(t *testing.T) {
	inner := NewAnswerTable(map[string]string{"hours": "3"})
	inner.SetCanceled("title")

	var labels, answers []string
	observed := Observe(inner, func(label, answer string) {
		labels = append(labels, label)
		answers = append(answers, answer)
	})

	got, err := observed.AskText("Enter hours", "", false)
	if err != nil || got != "3" {
		t.Fatalf("AskText = %q, %v", got, err)
	}
	if len(labels) != 1 || labels[0] != "Enter hours" || answers[0] != "3" {
		t.Errorf("observer saw %v %v", labels, answers)
	}

	// Aborted prompts are not reported.
	if _, err := observed.AskText("Enter title", "", false); !errors.Is(err, ErrAborted) {
		t.Fatalf("error = %v, want ErrAborted", err)
	}
	if len(labels) != 1 {
		t.Errorf("observer saw %d calls after abort, want 1", len(labels))
	}
}

func TestObserveNilFunc(t *testing.T) {
	inner := NewAnswerTable(nil)
	if got := Observe(inner, nil); got != commands.Resolver(inner) {
		t.Error("nil observer should return the inner resolver unchanged")
	}
}

// =============================================================================
// PROMPT MODEL TESTS
// =============================================================================

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPromptModelSingleLine(t *testing.T) {
	m := NewPromptModel("Enter title", "draft", false)

	if m.Value() != "draft" {
		t.Errorf("prefill = %q, want draft", m.Value())
	}

	// Typing appends at the cursor, which starts at the end of the prefill.
	next, _ := m.Update(keyRunes("s"))
	m = next.(PromptModel)
	if m.Value() != "drafts" {
		t.Errorf("value after typing = %q, want drafts", m.Value())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PromptModel)
	if !m.Done() || m.Canceled() {
		t.Errorf("after enter: done=%v canceled=%v", m.Done(), m.Canceled())
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPromptModelCancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := NewPromptModel("Enter title", "", false)
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		m = next.(PromptModel)
		if !m.Canceled() || m.Done() {
			t.Errorf("%v: canceled=%v done=%v", key, m.Canceled(), m.Done())
		}
		if cmd == nil {
			t.Errorf("%v should quit the program", key)
		}
	}
}

func TestPromptModelMultiline(t *testing.T) {
	m := NewPromptModel("Enter notes", "", true)

	next, _ := m.Update(keyRunes("a"))
	m = next.(PromptModel)

	// Enter inserts a newline instead of accepting.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PromptModel)
	if m.Done() {
		t.Fatal("enter should not accept a multiline answer")
	}

	next, _ = m.Update(keyRunes("b"))
	m = next.(PromptModel)
	if m.Value() != "a\nb" {
		t.Errorf("value = %q, want %q", m.Value(), "a\nb")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(PromptModel)
	if !m.Done() {
		t.Error("ctrl+d should accept a multiline answer")
	}
	if cmd == nil {
		t.Error("ctrl+d should quit the program")
	}
}

func TestPromptModelView(t *testing.T) {
	m := NewPromptModel("Enter title", "", false)
	view := m.View()
	if !strings.Contains(view, "Enter title") {
		t.Error("view should contain the label")
	}
	if !strings.Contains(view, "enter to accept") {
		t.Error("view should contain the key hint")
	}

	multi := NewPromptModel("Enter notes", "", true)
	if !strings.Contains(multi.View(), "ctrl+d to accept") {
		t.Error("multiline view should name the accept key")
	}
}

func TestPromptModelResize(t *testing.T) {
	m := NewPromptModel("Enter title", "", false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	m = next.(PromptModel)
	if m.width != 40 {
		t.Errorf("width = %d, want 40", m.width)
	}

	// Very narrow terminals keep a usable minimum.
	next, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 20})
	m = next.(PromptModel)
	if got := m.View(); got == "" {
		t.Error("view should render at minimum width")
	}
}
