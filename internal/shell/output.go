// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/slashline/internal/styles"
	"github.com/jeranaias/slashline/internal/transcript"
	"github.com/jeranaias/slashline/internal/util"
)

// =============================================================================
// OUTPUT SINK
// =============================================================================

// Output is the sink command handlers write through. Err is also the
// error sink for parse failures.
type Output interface {
	// Info prints de-emphasized informational text.
	Info(text string)
	// OK prints a success message.
	OK(text string)
	// Warn prints a warning.
	Warn(text string)
	// Err prints an error message.
	Err(text string)
	// Text prints plain text.
	Text(text string)
	// Markdown renders markdown when the terminal supports it.
	Markdown(text string)
	// Table prints a titled table.
	Table(title string, headers []string, rows [][]string)
}

// =============================================================================
// STYLES
// =============================================================================

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	okStyle = lipgloss.NewStyle().
		Foreground(styles.Emerald)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	tableTitleStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
)

// =============================================================================
// CONSOLE
// =============================================================================

// Console renders output to a terminal. Colors follow the configured
// mode; markdown renders through glamour only when colors are on, so
// piped output stays plain.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	width int
	md    *glamour.TermRenderer
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithWriter directs console output to w instead of stdout.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) { c.w = w }
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) { c.color = enabled }
}

// WithWidth sets the wrap width for markdown and tables.
func WithWidth(width int) ConsoleOption {
	return func(c *Console) { c.width = width }
}

// NewConsole creates a console writing to stdout with detected color
// support and terminal width.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		w:     os.Stdout,
		color: ColorsEnabled(),
		width: TerminalWidth(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetColor toggles colored output. Used for live config reload.
func (c *Console) SetColor(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color != enabled {
		c.color = enabled
		c.md = nil
	}
}

func (c *Console) colorEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

func (c *Console) Info(text string) { c.println(infoStyle, text) }

func (c *Console) OK(text string) { c.println(okStyle, "✓ "+text) }

func (c *Console) Warn(text string) { c.println(warnStyle, "⚠ "+text) }

func (c *Console) Err(text string) { c.println(errStyle, "Error: "+text) }

func (c *Console) Text(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, text)
}

// Markdown renders markdown through glamour when colors are enabled,
// falling back to the raw text when rendering fails or output is piped.
func (c *Console) Markdown(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.color {
		fmt.Fprintln(c.w, text)
		return
	}

	if c.md == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(c.width),
		)
		if err == nil {
			c.md = renderer
		}
	}
	if c.md == nil {
		fmt.Fprintln(c.w, text)
		return
	}

	rendered, err := c.md.Render(text)
	if err != nil {
		fmt.Fprintln(c.w, text)
		return
	}
	fmt.Fprint(c.w, rendered)
}

// Table prints a titled table with columns padded by display width and
// shrunk to fit the terminal.
func (c *Console) Table(title string, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	widths := columnWidths(headers, rows, c.width)

	if title != "" {
		if c.color {
			fmt.Fprintln(c.w, tableTitleStyle.Render(title))
		} else {
			fmt.Fprintln(c.w, title)
		}
	}

	header := formatRow(headers, widths)
	if c.color {
		header = tableHeaderStyle.Render(header)
	}
	fmt.Fprintln(c.w, header)

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(c.w, strings.Join(sep, "  "))

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		fmt.Fprintln(c.w, formatRow(cells, widths))
	}
}

func (c *Console) println(style lipgloss.Style, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		text = style.Render(text)
	}
	fmt.Fprintln(c.w, text)
}

// =============================================================================
// TABLE LAYOUT
// =============================================================================

// minColumnWidth is the floor a column shrinks to before truncation
// gives up making the table narrower.
const minColumnWidth = 6

// columnWidths computes display widths per column, shrinking the widest
// columns until the table fits maxWidth.
func columnWidths(headers []string, rows [][]string, maxWidth int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = util.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := util.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Two-space gutters between columns.
	total := func() int {
		t := 2 * (len(widths) - 1)
		for _, w := range widths {
			t += w
		}
		return t
	}

	// Shrink the widest column first so narrow columns keep their text.
	for total() > maxWidth {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}

	return widths
}

// formatRow pads and truncates cells to their column widths.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = util.PadRight(util.TruncateWidth(cell, w), w)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// =============================================================================
// CAPTURE
// =============================================================================

// Capture buffers output entries instead of printing them. The shell
// queues each command's output here and flushes after dispatch; tests
// read the entries directly.
type Capture struct {
	mu      sync.Mutex
	entries []transcript.Output
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) add(o transcript.Output) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, o)
}

func (c *Capture) Info(text string) {
	c.add(transcript.Output{Kind: transcript.KindInfo, Text: text})
}

func (c *Capture) OK(text string) {
	c.add(transcript.Output{Kind: transcript.KindOK, Text: text})
}

func (c *Capture) Warn(text string) {
	c.add(transcript.Output{Kind: transcript.KindWarn, Text: text})
}

func (c *Capture) Err(text string) {
	c.add(transcript.Output{Kind: transcript.KindError, Text: text})
}

func (c *Capture) Text(text string) {
	c.add(transcript.Output{Kind: transcript.KindText, Text: text})
}

func (c *Capture) Markdown(text string) {
	c.add(transcript.Output{Kind: transcript.KindMarkdown, Text: text})
}

func (c *Capture) Table(title string, headers []string, rows [][]string) {
	c.add(transcript.Output{
		Kind:    transcript.KindTable,
		Title:   title,
		Headers: headers,
		Rows:    rows,
	})
}

// Entries returns a copy of the buffered entries.
func (c *Capture) Entries() []transcript.Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]transcript.Output, len(c.entries))
	copy(out, c.entries)
	return out
}

// Drain returns the buffered entries and clears the buffer.
func (c *Capture) Drain() []transcript.Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.entries
	c.entries = nil
	return out
}

// Replay plays captured entries into another sink in order.
func Replay(out Output, entries []transcript.Output) {
	for _, e := range entries {
		switch e.Kind {
		case transcript.KindInfo:
			out.Info(e.Text)
		case transcript.KindOK:
			out.OK(e.Text)
		case transcript.KindWarn:
			out.Warn(e.Text)
		case transcript.KindError:
			out.Err(e.Text)
		case transcript.KindMarkdown:
			out.Markdown(e.Text)
		case transcript.KindTable:
			out.Table(e.Title, e.Headers, e.Rows)
		default:
			out.Text(e.Text)
		}
	}
}

// =============================================================================
// TEE
// =============================================================================

// Tee fans output out to multiple sinks.
type Tee struct {
	outs []Output
}

// NewTee creates a sink writing to every given output in order.
func NewTee(outs ...Output) *Tee {
	return &Tee{outs: outs}
}

func (t *Tee) Info(text string) {
	for _, o := range t.outs {
		o.Info(text)
	}
}

func (t *Tee) OK(text string) {
	for _, o := range t.outs {
		o.OK(text)
	}
}

func (t *Tee) Warn(text string) {
	for _, o := range t.outs {
		o.Warn(text)
	}
}

func (t *Tee) Err(text string) {
	for _, o := range t.outs {
		o.Err(text)
	}
}

func (t *Tee) Text(text string) {
	for _, o := range t.outs {
		o.Text(text)
	}
}

func (t *Tee) Markdown(text string) {
	for _, o := range t.outs {
		o.Markdown(text)
	}
}

func (t *Tee) Table(title string, headers []string, rows [][]string) {
	for _, o := range t.outs {
		o.Table(title, headers, rows)
	}
}
