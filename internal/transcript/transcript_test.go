// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript records shell sessions and renders them to
// Markdown, JSON, or HTML.
package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// sampleSession builds a two-entry session with every output kind.
func sampleSession() *Session {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &Session{
		ID:        "0f47ac10-58cc-4372-a567-0e02b2c3d479",
		StartedAt: start,
		EndedAt:   start.Add(95 * time.Second),
		Entries: []Entry{
			{
				Line: `/add "Fix bug" --hours 3`,
				OK:   true,
				Prompts: []Prompt{
					{Label: "Enter title", Answer: "Fix bug"},
				},
				Outputs: []Output{
					{Kind: KindOK, Text: `Added "Fix bug"`},
					{Kind: KindText, Text: "one task on the board"},
					{
						Kind:    KindTable,
						Title:   "Tasks",
						Headers: []string{"ID", "Title", "Status"},
						Rows:    [][]string{{"42", "Fix bug", "todo"}},
					},
				},
				When: start.Add(10 * time.Second),
			},
			{
				Line:  "/bogus",
				OK:    false,
				Error: "Unknown: /bogus",
				When:  start.Add(30 * time.Second),
			},
		},
	}
}

// =============================================================================
// RECORDER TESTS
// =============================================================================

// TestRecorder_RecordAndFinalize tests the record/finalize lifecycle.
func TestRecorder_RecordAndFinalize(t *testing.T) {
	r := NewRecorder()

	r.Record(Entry{Line: "/add a", OK: true})
	r.Record(Entry{Line: "/bogus", OK: false, Error: "Unknown: /bogus"})
	require.Equal(t, 2, r.Len())

	s := r.Finalize()
	require.NotEmpty(t, s.ID, "Session should have an ID")
	require.False(t, s.StartedAt.IsZero(), "Session should have a start time")
	require.False(t, s.EndedAt.IsZero(), "Finalize should stamp the end time")
	require.Len(t, s.Entries, 2)

	// The returned session is a copy; later records do not mutate it.
	r.Record(Entry{Line: "/list", OK: true})
	require.Len(t, s.Entries, 2)
	require.Len(t, r.Finalize().Entries, 3)
}

// TestRecorder_StampsWhen tests that a zero When is filled in.
func TestRecorder_StampsWhen(t *testing.T) {
	r := NewRecorder()
	r.Record(Entry{Line: "/add a", OK: true})

	s := r.Finalize()
	require.False(t, s.Entries[0].When.IsZero(), "Record should stamp a zero When")
}

// =============================================================================
// MARKDOWN WRITER TESTS
// =============================================================================

// TestMarkdownWriter_Render tests the Markdown layout.
func TestMarkdownWriter_Render(t *testing.T) {
	w := &MarkdownWriter{}
	out, err := w.Render(sampleSession())
	require.NoError(t, err)

	md := string(out)
	require.Contains(t, md, "# Session Transcript")
	require.Contains(t, md, "## Command: `/add \"Fix bug\" --hours 3`")
	require.Contains(t, md, "Status: [OK]")
	require.Contains(t, md, "Status: [FAIL]")
	require.Contains(t, md, "- Error: Unknown: /bogus")
	require.Contains(t, md, "> Enter title: Fix bug")
	require.Contains(t, md, "- [OK] Added \"Fix bug\"")
	require.Contains(t, md, "- one task on the board")
	require.Contains(t, md, "### Tasks")
	require.Contains(t, md, "| ID | Title | Status |")
	require.Contains(t, md, "| 42 | Fix bug | todo |")
	require.Contains(t, md, "Session ran 09:00:00 to 09:01:35 (1m 35s)")
}

// TestMarkdownWriter_EscapesPipes tests pipe escaping in table cells.
func TestMarkdownWriter_EscapesPipes(t *testing.T) {
	s := &Session{
		ID:        "x",
		StartedAt: time.Now(),
		Entries: []Entry{{
			Line: "/list",
			OK:   true,
			Outputs: []Output{{
				Kind:    KindTable,
				Headers: []string{"Title"},
				Rows:    [][]string{{"a | b"}},
			}},
		}},
	}

	out, err := (&MarkdownWriter{}).Render(s)
	require.NoError(t, err)
	require.Contains(t, string(out), `a \| b`)
}

// TestMarkdownWriter_MarkdownPassthrough tests that markdown outputs
// pass through verbatim.
func TestMarkdownWriter_MarkdownPassthrough(t *testing.T) {
	s := &Session{
		ID:        "x",
		StartedAt: time.Now(),
		Entries: []Entry{{
			Line: "/help",
			OK:   true,
			Outputs: []Output{{
				Kind: KindMarkdown,
				Text: "### Usage\n\nRun `/add` to create a task.",
			}},
		}},
	}

	out, err := (&MarkdownWriter{}).Render(s)
	require.NoError(t, err)
	require.Contains(t, string(out), "### Usage\n\nRun `/add` to create a task.")
}

func TestMarkdownWriter_NilSession(t *testing.T) {
	_, err := (&MarkdownWriter{}).Render(nil)
	require.Error(t, err)
}

// =============================================================================
// JSON WRITER TESTS
// =============================================================================

// TestJSONWriter_RoundTrip tests that a rendered transcript loads back.
func TestJSONWriter_RoundTrip(t *testing.T) {
	orig := sampleSession()

	out, err := (&JSONWriter{}).Render(orig)
	require.NoError(t, err)

	loaded, err := Load(out)
	require.NoError(t, err)

	require.Equal(t, orig.ID, loaded.ID)
	require.Len(t, loaded.Entries, 2)
	require.Equal(t, orig.Entries[0].Line, loaded.Entries[0].Line)
	require.True(t, loaded.Entries[0].OK)
	require.Equal(t, orig.Entries[0].Prompts, loaded.Entries[0].Prompts)
	require.Equal(t, orig.Entries[0].Outputs, loaded.Entries[0].Outputs)
	require.Equal(t, "Unknown: /bogus", loaded.Entries[1].Error)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load([]byte("not json"))
	require.Error(t, err)
}

// =============================================================================
// HTML WRITER TESTS
// =============================================================================

// TestHTMLWriter_Render tests the HTML page structure.
func TestHTMLWriter_Render(t *testing.T) {
	out, err := (&HTMLWriter{}).Render(sampleSession())
	require.NoError(t, err)

	page := string(out)
	require.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	require.Contains(t, page, "<title>Session Transcript</title>")
	require.Contains(t, page, "ok-command")
	require.Contains(t, page, "fail-command")
	require.Contains(t, page, "Unknown: /bogus")
	require.Contains(t, page, "<strong>Enter title:</strong> Fix bug")
	require.Contains(t, page, "<caption>Tasks</caption>")
	require.Contains(t, page, "<th>Title</th>")
	require.Contains(t, page, "<td>Fix bug</td>")
	require.Contains(t, page, "Session ran 09:00:00 to 09:01:35")
}

// TestHTMLWriter_EscapesContent tests that command text cannot inject HTML.
func TestHTMLWriter_EscapesContent(t *testing.T) {
	s := &Session{
		ID:        "x",
		StartedAt: time.Now(),
		Entries: []Entry{{
			Line: `/echo text:"<script>alert(1)</script>"`,
			OK:   true,
			Outputs: []Output{
				{Kind: KindText, Text: "<b>bold</b>"},
			},
		}},
	}

	out, err := (&HTMLWriter{}).Render(s)
	require.NoError(t, err)

	page := string(out)
	require.NotContains(t, page, "<script>alert(1)</script>")
	require.Contains(t, page, "&lt;script&gt;alert(1)&lt;/script&gt;")
	require.Contains(t, page, "&lt;b&gt;bold&lt;/b&gt;")
}

// TestHTMLWriter_HighlightsCode tests chroma highlighting of fenced blocks.
func TestHTMLWriter_HighlightsCode(t *testing.T) {
	s := &Session{
		ID:        "x",
		StartedAt: time.Now(),
		Entries: []Entry{{
			Line: "/help",
			OK:   true,
			Outputs: []Output{{
				Kind: KindMarkdown,
				Text: "Example:\n\n```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```",
			}},
		}},
	}

	out, err := (&HTMLWriter{}).Render(s)
	require.NoError(t, err)

	page := string(out)
	require.Contains(t, page, `<div class="code-lang">go</div>`)
	require.Contains(t, page, "<span style=", "Go block should carry inline highlight styles")
}

// TestHTMLWriter_FallbackWhenLexerMisses tests the plain pre fallback.
func TestHTMLWriter_FallbackWhenLexerMisses(t *testing.T) {
	s := &Session{
		ID:        "x",
		StartedAt: time.Now(),
		Entries: []Entry{{
			Line: "/help",
			OK:   true,
			Outputs: []Output{{
				Kind: KindMarkdown,
				Text: "```zzznotalanguage\nsome opaque text\n```",
			}},
		}},
	}

	out, err := (&HTMLWriter{}).Render(s)
	require.NoError(t, err)
	require.Contains(t, string(out), "<pre><code>some opaque text</code></pre>")
}

// =============================================================================
// FILE AND FACTORY TESTS
// =============================================================================

// TestWriterFor tests format name resolution.
func TestWriterFor(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"md", ".md", false},
		{"markdown", ".md", false},
		{"json", ".json", false},
		{"html", ".html", false},
		{"htm", ".html", false},
		{"HTML", ".html", false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w, err := WriterFor(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantExt, w.FileExtension())
		})
	}
}

// TestWriteFile tests atomic transcript writing.
func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "session.md")

	err := WriteFile(sampleSession(), &MarkdownWriter{}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Session Transcript")

	// No leftover temp files from the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestDefaultFilename tests the generated filename shape.
func TestDefaultFilename(t *testing.T) {
	s := sampleSession()
	name := DefaultFilename(s, &MarkdownWriter{})

	require.Equal(t, "session_20250310_090000_0f47ac10.md", name)
}

// TestFormatSpan tests span formatting at each magnitude.
func TestFormatSpan(t *testing.T) {
	require.Equal(t, "250ms", formatSpan(250*time.Millisecond))
	require.Equal(t, "2.5s", formatSpan(2500*time.Millisecond))
	require.Equal(t, "1m 35s", formatSpan(95*time.Second))
}
