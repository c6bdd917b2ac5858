// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package interaction provides the prompt resolvers that answer for command
// arguments the input line left unset.
package interaction

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/slashline/internal/commands"
	"github.com/jeranaias/slashline/internal/styles"
)

// =============================================================================
// PROMPT MODEL
// =============================================================================

var (
	promptLabelStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)

	promptHintStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)

	promptBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.FocusRing).
			Padding(0, 1)
)

// PromptModel is the bubbletea model behind PromptProgram: one question,
// answered in a single input line or a small editing area.
type PromptModel struct {
	label     string
	multiline bool
	input     textinput.Model
	area      textarea.Model
	width     int
	done      bool
	canceled  bool
}

// NewPromptModel builds the model with the default text pre-filled.
func NewPromptModel(label, defaultText string, multiline bool) PromptModel {
	m := PromptModel{label: label, multiline: multiline, width: 80}

	if multiline {
		ta := textarea.New()
		ta.Placeholder = "Type here..."
		ta.ShowLineNumbers = false
		ta.CharLimit = 8192
		ta.SetWidth(70)
		ta.SetHeight(5)
		ta.SetValue(defaultText)
		ta.Focus()
		m.area = ta
		return m
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)
	ti.TextStyle = lipgloss.NewStyle().
		Foreground(styles.TextPrimary)
	ti.Cursor.Style = lipgloss.NewStyle().
		Foreground(styles.Cyan)
	ti.CharLimit = 4096
	ti.Width = 70
	ti.SetValue(defaultText)
	ti.Focus()
	m.input = ti
	return m
}

// Init starts the cursor blink.
func (m PromptModel) Init() tea.Cmd {
	if m.multiline {
		return textarea.Blink
	}
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit

		case "enter":
			// Enter accepts a single-line answer; in a multiline area it
			// falls through to the component and inserts a newline.
			if !m.multiline {
				m.done = true
				return m, tea.Quit
			}

		case "ctrl+d":
			if m.multiline {
				m.done = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		inner := msg.Width - 8
		if inner < 20 {
			inner = 20
		}
		if m.multiline {
			m.area.SetWidth(inner)
		} else {
			m.input.Width = inner
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.multiline {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// View renders the label, the input box, and the key hint.
func (m PromptModel) View() string {
	var field, hint string
	if m.multiline {
		field = m.area.View()
		hint = "ctrl+d to accept, esc to cancel"
	} else {
		field = m.input.View()
		hint = "enter to accept, esc to cancel"
	}

	boxWidth := m.width - 4
	if boxWidth < 24 {
		boxWidth = 24
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		promptLabelStyle.Render(m.label),
		promptBoxStyle.Width(boxWidth).Render(field),
		promptHintStyle.Render(hint),
	)
}

// Value returns the answer as edited so far.
func (m PromptModel) Value() string {
	if m.multiline {
		return m.area.Value()
	}
	return m.input.Value()
}

// Canceled reports whether the prompt was dismissed with esc or ctrl+c.
func (m PromptModel) Canceled() bool {
	return m.canceled
}

// Done reports whether the answer was accepted.
func (m PromptModel) Done() bool {
	return m.done
}

// =============================================================================
// TUI RESOLVER
// =============================================================================

// PromptProgram resolves prompts by running a bubbletea program inline on
// the controlling terminal, one question at a time.
type PromptProgram struct{}

var _ commands.Resolver = (*PromptProgram)(nil)

// NewPromptProgram returns the TUI resolver.
func NewPromptProgram() *PromptProgram {
	return &PromptProgram{}
}

// AskText implements commands.Resolver by running a prompt to completion.
func (p *PromptProgram) AskText(label, defaultText string, multiline bool) (string, error) {
	prog := tea.NewProgram(NewPromptModel(label, defaultText, multiline))
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run prompt: %w", err)
	}
	m, ok := final.(PromptModel)
	if !ok || m.Canceled() {
		return "", ErrAborted
	}
	return m.Value(), nil
}
