// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"strings"
)

// =============================================================================
// MARKDOWN WRITER
// =============================================================================

// MarkdownWriter renders sessions to Markdown.
type MarkdownWriter struct{}

// Render converts a session to Markdown.
func (w *MarkdownWriter) Render(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}

	var sb strings.Builder

	sb.WriteString("# Session Transcript\n\n")
	sb.WriteString(fmt.Sprintf("- **Session**: %s\n", s.ID))
	sb.WriteString(fmt.Sprintf("- **Started**: %s\n", formatTimestamp(s.StartedAt)))
	sb.WriteString(fmt.Sprintf("- **Commands**: %d\n", len(s.Entries)))
	sb.WriteString("\n---\n\n")

	for i, e := range s.Entries {
		sb.WriteString(fmt.Sprintf("## Command: `%s`\n\n", e.Line))

		if e.OK {
			sb.WriteString("Status: [OK]\n\n")
		} else {
			sb.WriteString("Status: [FAIL]\n\n")
			if e.Error != "" {
				sb.WriteString(fmt.Sprintf("- Error: %s\n\n", e.Error))
			}
		}

		if len(e.Prompts) > 0 {
			for _, p := range e.Prompts {
				sb.WriteString(fmt.Sprintf("> %s: %s\n", p.Label, p.Answer))
			}
			sb.WriteString("\n")
		}

		for _, out := range e.Outputs {
			w.renderOutput(&sb, out)
		}

		if i < len(s.Entries)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	if s.EndedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("*Session started %s*\n", formatTimestamp(s.StartedAt)))
	} else {
		sb.WriteString(fmt.Sprintf("*Session ran %s to %s (%s)*\n",
			formatShortTimestamp(s.StartedAt),
			formatShortTimestamp(s.EndedAt),
			formatSpan(s.Span())))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (w *MarkdownWriter) FileExtension() string {
	return ".md"
}

// renderOutput writes one output unit. Tables become pipe tables,
// Markdown passes through verbatim, everything else becomes a list item.
func (w *MarkdownWriter) renderOutput(sb *strings.Builder, out Output) {
	switch out.Kind {
	case KindTable:
		if out.Title != "" {
			sb.WriteString(fmt.Sprintf("### %s\n\n", out.Title))
		}
		w.renderTable(sb, out.Headers, out.Rows)
	case KindMarkdown:
		sb.WriteString(strings.TrimSpace(out.Text))
		sb.WriteString("\n\n")
	default:
		prefix := kindPrefix(out.Kind)
		// Indent continuation lines so multi-line text stays in the item.
		text := strings.ReplaceAll(out.Text, "\n", "\n  ")
		if prefix != "" {
			sb.WriteString(fmt.Sprintf("- %s %s\n\n", prefix, text))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n\n", text))
		}
	}
}

// renderTable writes a pipe table.
func (w *MarkdownWriter) renderTable(sb *strings.Builder, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	sb.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		sb.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
	sb.WriteString("\n")
}

// kindPrefix maps semantic output kinds to their bracket indicator.
func kindPrefix(kind OutputKind) string {
	switch kind {
	case KindInfo:
		return "[i]"
	case KindOK:
		return "[OK]"
	case KindWarn:
		return "[!]"
	case KindError:
		return "[X]"
	default:
		return ""
	}
}

// escapeCells escapes pipe characters so cell text cannot break the table.
func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", "\\|")
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = c
	}
	return out
}
