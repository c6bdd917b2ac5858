// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript records shell sessions and renders them to
// Markdown, JSON, or HTML.
package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/slashline/internal/util"
)

// =============================================================================
// SESSION MODEL
// =============================================================================

// OutputKind classifies one unit of command output.
type OutputKind string

const (
	KindInfo     OutputKind = "info"
	KindOK       OutputKind = "ok"
	KindWarn     OutputKind = "warn"
	KindError    OutputKind = "error"
	KindText     OutputKind = "text"
	KindMarkdown OutputKind = "markdown"
	KindTable    OutputKind = "table"
)

// Output is one unit of output a command produced. Table outputs carry
// Title, Headers, and Rows; every other kind carries Text.
type Output struct {
	Kind    OutputKind `json:"kind"`
	Text    string     `json:"text,omitempty"`
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Prompt is one interactive exchange answered during a command.
type Prompt struct {
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// Entry is one dispatched line with everything it produced.
type Entry struct {
	// Line is the command line as typed.
	Line string `json:"line"`
	// OK reports whether the command completed without error.
	OK bool `json:"ok"`
	// Error holds the failure text when OK is false.
	Error string `json:"error,omitempty"`
	// Outputs are the sink writes the command produced, in order.
	Outputs []Output `json:"outputs,omitempty"`
	// Prompts are the interactive exchanges answered during the parse.
	Prompts []Prompt `json:"prompts,omitempty"`
	// When is the dispatch time.
	When time.Time `json:"when"`
}

// Session is a full recorded shell session.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Entries   []Entry   `json:"entries"`
}

// Span returns the elapsed time between session start and end.
func (s *Session) Span() time.Duration {
	if s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder accumulates entries in memory for the lifetime of a session.
// Finalize stamps the end time and returns the session for rendering.
type Recorder struct {
	mu      sync.Mutex
	session Session
}

// NewRecorder starts a new session with a fresh ID.
func NewRecorder() *Recorder {
	return &Recorder{
		session: Session{
			ID:        uuid.NewString(),
			StartedAt: time.Now(),
		},
	}
}

// Record appends an entry. A zero When is stamped with the current time.
func (r *Recorder) Record(e Entry) {
	if e.When.IsZero() {
		e.When = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.Entries = append(r.session.Entries, e)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.session.Entries)
}

// Finalize stamps the end time and returns a copy of the session.
// Recording after Finalize is allowed; a later Finalize re-stamps.
func (r *Recorder) Finalize() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.EndedAt = time.Now()

	out := r.session
	out.Entries = make([]Entry, len(r.session.Entries))
	copy(out.Entries, r.session.Entries)
	return &out
}

// =============================================================================
// WRITERS
// =============================================================================

// Writer renders a session to one output format.
type Writer interface {
	// Render converts the session to the target format.
	Render(s *Session) ([]byte, error)

	// FileExtension returns the extension for the format (e.g. ".md").
	FileExtension() string
}

// WriterFor returns the writer for a format name.
func WriterFor(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "html", "htm":
		return &HTMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown transcript format '%s', must be one of: md, json, html", format)
	}
}

// WriteFile renders the session and writes it atomically.
func WriteFile(s *Session, w Writer, path string) error {
	content, err := w.Render(s)
	if err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// DefaultFilename builds a timestamped filename for the session.
func DefaultFilename(s *Session, w Writer) string {
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("session_%s_%s%s",
		s.StartedAt.Format("20060102_150405"), id, w.FileExtension())
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// formatSpan formats a session span to a human-readable string.
func formatSpan(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
