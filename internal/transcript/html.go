// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// HTML WRITER
// =============================================================================

// HTMLWriter renders sessions to a self-contained HTML page with
// embedded CSS and chroma syntax highlighting for code blocks.
type HTMLWriter struct{}

// Render converts a session to HTML.
func (w *HTMLWriter) Render(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>Session Transcript</title>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", formatTimestamp(s.StartedAt)))
	sb.WriteString(w.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"container\">\n")

	// Header with session metadata
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString("            <h1>Session Transcript</h1>\n")
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Session:</strong> %s</span>\n", html.EscapeString(s.ID)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Started:</strong> %s</span>\n", formatTimestamp(s.StartedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Commands:</strong> %d</span>\n", len(s.Entries)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	// Command cards
	sb.WriteString("        <main class=\"commands\">\n")
	for i := range s.Entries {
		sb.WriteString(w.renderEntry(&s.Entries[i]))
	}
	sb.WriteString("        </main>\n")

	// Footer with session span
	sb.WriteString("        <footer class=\"footer\">\n")
	if s.EndedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("            <p>Session started %s</p>\n", formatTimestamp(s.StartedAt)))
	} else {
		sb.WriteString(fmt.Sprintf("            <p>Session ran %s to %s (%s)</p>\n",
			formatShortTimestamp(s.StartedAt),
			formatShortTimestamp(s.EndedAt),
			formatSpan(s.Span())))
	}
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (w *HTMLWriter) FileExtension() string {
	return ".html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderEntry renders one command card.
func (w *HTMLWriter) renderEntry(e *Entry) string {
	var sb strings.Builder

	statusClass := "ok"
	statusLabel := "[OK]"
	if !e.OK {
		statusClass = "fail"
		statusLabel = "[FAIL]"
	}

	sb.WriteString(fmt.Sprintf("            <div class=\"command %s-command\">\n", statusClass))

	// Card header: command line, status badge, timestamp
	sb.WriteString("                <div class=\"command-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <code class=\"command-line\">%s</code>\n", html.EscapeString(e.Line)))
	sb.WriteString(fmt.Sprintf("                    <span class=\"status %s\">%s</span>\n", statusClass, statusLabel))
	sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(e.When)))
	sb.WriteString("                </div>\n")

	if !e.OK && e.Error != "" {
		sb.WriteString(fmt.Sprintf("                <p class=\"error-text\">%s</p>\n", html.EscapeString(e.Error)))
	}

	if len(e.Prompts) > 0 {
		sb.WriteString("                <div class=\"prompts\">\n")
		for _, p := range e.Prompts {
			sb.WriteString(fmt.Sprintf("                    <p class=\"prompt\"><strong>%s:</strong> %s</p>\n",
				html.EscapeString(p.Label), html.EscapeString(p.Answer)))
		}
		sb.WriteString("                </div>\n")
	}

	if len(e.Outputs) > 0 {
		sb.WriteString("                <div class=\"outputs\">\n")
		for _, out := range e.Outputs {
			sb.WriteString(w.renderOutput(out))
		}
		sb.WriteString("                </div>\n")
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

// renderOutput renders one output unit.
func (w *HTMLWriter) renderOutput(out Output) string {
	switch out.Kind {
	case KindTable:
		return w.renderTable(out.Title, out.Headers, out.Rows)
	case KindMarkdown:
		return w.formatMarkdown(out.Text)
	default:
		prefix := kindPrefix(out.Kind)
		text := out.Text
		if prefix != "" {
			text = prefix + " " + text
		}
		if strings.Contains(out.Text, "\n") {
			return fmt.Sprintf("                    <pre class=\"out out-%s\">%s</pre>\n",
				out.Kind, html.EscapeString(text))
		}
		return fmt.Sprintf("                    <p class=\"out out-%s\">%s</p>\n",
			out.Kind, html.EscapeString(text))
	}
}

// renderTable renders a table output as an HTML table.
func (w *HTMLWriter) renderTable(title string, headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("                    <table class=\"out-table\">\n")
	if title != "" {
		sb.WriteString(fmt.Sprintf("                        <caption>%s</caption>\n", html.EscapeString(title)))
	}
	sb.WriteString("                        <thead><tr>")
	for _, h := range headers {
		sb.WriteString(fmt.Sprintf("<th>%s</th>", html.EscapeString(h)))
	}
	sb.WriteString("</tr></thead>\n")
	sb.WriteString("                        <tbody>\n")
	for _, row := range rows {
		sb.WriteString("                        <tr>")
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(fmt.Sprintf("<td>%s</td>", html.EscapeString(cell)))
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("                        </tbody>\n")
	sb.WriteString("                    </table>\n")
	return sb.String()
}

// =============================================================================
// MARKDOWN CONTENT
// =============================================================================

var (
	codeBlockRegex  = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// formatMarkdown converts a markdown output to HTML. Fenced code blocks
// run through chroma; a block whose language has no lexer falls back to
// a plain pre.
func (w *HTMLWriter) formatMarkdown(content string) string {
	var sb strings.Builder

	rest := content
	for {
		loc := codeBlockRegex.FindStringSubmatchIndex(rest)
		if loc == nil {
			sb.WriteString(w.formatProse(rest))
			break
		}
		sb.WriteString(w.formatProse(rest[:loc[0]]))

		lang := rest[loc[2]:loc[3]]
		code := strings.TrimRight(rest[loc[4]:loc[5]], "\n")
		sb.WriteString(w.formatCodeBlock(code, lang))

		rest = rest[loc[1]:]
	}

	return sb.String()
}

// formatProse converts non-code markdown text to paragraphs with inline
// code styling.
func (w *HTMLWriter) formatProse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	escaped := html.EscapeString(text)
	escaped = inlineCodeRegex.ReplaceAllString(escaped, "<code class=\"inline-code\">$1</code>")

	var sb strings.Builder
	for _, para := range strings.Split(escaped, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("                    <p>%s</p>\n", strings.ReplaceAll(para, "\n", "<br>\n")))
	}
	return sb.String()
}

// formatCodeBlock renders one fenced block, highlighted when a lexer
// matches the language.
func (w *HTMLWriter) formatCodeBlock(code, lang string) string {
	var sb strings.Builder
	sb.WriteString("                    <div class=\"code-block\">\n")
	if lang != "" {
		sb.WriteString(fmt.Sprintf("                        <div class=\"code-lang\">%s</div>\n", html.EscapeString(lang)))
	}

	if highlighted, ok := highlightHTML(code, lang); ok {
		sb.WriteString(highlighted)
	} else {
		sb.WriteString(fmt.Sprintf("<pre><code>%s</code></pre>\n", html.EscapeString(code)))
	}

	sb.WriteString("                    </div>\n")
	return sb.String()
}

// highlightHTML applies chroma syntax highlighting with inline styles.
// Returns false when no lexer matches or formatting fails.
func highlightHTML(code, language string) (string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil && language == "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := chromahtml.New(chromahtml.TabWidth(4))

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", false
	}

	return buf.String(), true
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML transcript.
func (w *HTMLWriter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --code-bg: #1a1b26;
            --accent-green: #9ece6a;
            --accent-red: #f7768e;
            --accent-cyan: #7dcfff;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            font-weight: 700;
            margin-bottom: 16px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .commands {
            padding: 24px 32px;
        }

        .command {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            background: var(--bg-primary);
            border-left: 4px solid transparent;
        }

        .ok-command {
            border-left-color: var(--accent-green);
        }

        .fail-command {
            border-left-color: var(--accent-red);
        }

        .command-header {
            display: flex;
            align-items: center;
            gap: 12px;
            margin-bottom: 12px;
        }

        .command-line {
            font-family: var(--font-mono);
            font-size: 14px;
            color: var(--accent-cyan);
            flex: 1;
        }

        .status {
            font-family: var(--font-mono);
            font-size: 13px;
            font-weight: 600;
        }

        .status.ok {
            color: var(--accent-green);
        }

        .status.fail {
            color: var(--accent-red);
        }

        .timestamp {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .error-text {
            color: var(--accent-red);
            margin-bottom: 12px;
        }

        .prompts {
            margin-bottom: 12px;
            padding: 8px 12px;
            border-left: 2px solid var(--bg-tertiary);
            color: var(--text-secondary);
            font-size: 14px;
        }

        .outputs p {
            margin-bottom: 8px;
        }

        .out-warn {
            color: #e0af68;
        }

        .out-error {
            color: var(--accent-red);
        }

        .out-ok {
            color: var(--accent-green);
        }

        pre.out {
            font-family: var(--font-mono);
            font-size: 14px;
            padding: 12px;
            background: var(--code-bg);
            border-radius: 6px;
            overflow-x: auto;
            margin-bottom: 8px;
        }

        .out-table {
            border-collapse: collapse;
            margin: 12px 0;
            font-size: 14px;
        }

        .out-table caption {
            caption-side: top;
            text-align: left;
            font-weight: 600;
            padding: 4px 0;
            color: var(--text-secondary);
        }

        .out-table th, .out-table td {
            padding: 6px 12px;
            border: 1px solid var(--border-color);
            text-align: left;
        }

        .out-table th {
            background: var(--bg-tertiary);
        }

        .code-block {
            margin: 12px 0;
            border-radius: 8px;
            overflow: hidden;
            border: 1px solid var(--border-color);
        }

        .code-lang {
            padding: 6px 12px;
            background: var(--bg-tertiary);
            font-size: 12px;
            font-weight: 600;
            color: var(--text-secondary);
            text-transform: uppercase;
        }

        .code-block pre {
            margin: 0;
            padding: 12px;
            overflow-x: auto;
            font-family: var(--font-mono);
            font-size: 14px;
        }

        .inline-code {
            font-family: var(--font-mono);
            font-size: 14px;
            padding: 2px 6px;
            background: var(--code-bg);
            border-radius: 4px;
        }

        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }
    </style>
`
}
