// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package interaction provides the prompt resolvers that answer for command
// arguments the input line left unset.
package interaction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/slashline/internal/commands"
	"github.com/peterh/liner"
)

// ErrAborted is returned when the user declines a prompt (Ctrl+C, Esc, or an
// answer key explicitly marked as canceled).
var ErrAborted = errors.New("prompt aborted")

// =============================================================================
// LINE RESOLVER
// =============================================================================

// LineResolver answers prompts through a liner line editor, sharing the
// editor the interactive shell already owns. Defaults are pre-filled into
// the edit buffer so the user can accept or amend them in place.
type LineResolver struct {
	line *liner.State
	out  io.Writer
}

var _ commands.Resolver = (*LineResolver)(nil)

// NewLineResolver wraps an existing liner instance. The caller keeps
// ownership and is responsible for closing it.
func NewLineResolver(line *liner.State) *LineResolver {
	return &LineResolver{line: line, out: os.Stdout}
}

// AskText implements commands.Resolver.
func (r *LineResolver) AskText(label, defaultText string, multiline bool) (string, error) {
	if multiline {
		return r.askMultiline(label, defaultText)
	}
	answer, err := r.line.PromptWithSuggestion(label+": ", defaultText, -1)
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", ErrAborted
		}
		return "", err
	}
	return answer, nil
}

// askMultiline collects lines until an empty line or EOF ends the answer.
func (r *LineResolver) askMultiline(label, defaultText string) (string, error) {
	fmt.Fprintln(r.out, label+" (finish with an empty line):")

	// liner edits a single row, so a prior multiline value is flattened
	// before it is offered as the suggestion.
	suggestion := strings.ReplaceAll(defaultText, "\n", " ")

	var lines []string
	for {
		var (
			answer string
			err    error
		)
		if len(lines) == 0 {
			answer, err = r.line.PromptWithSuggestion("> ", suggestion, -1)
		} else {
			answer, err = r.line.Prompt("> ")
		}
		if err != nil {
			if err == liner.ErrPromptAborted {
				return "", ErrAborted
			}
			if err == io.EOF && len(lines) > 0 {
				break
			}
			return "", err
		}
		if answer == "" {
			break
		}
		lines = append(lines, answer)
	}
	return strings.Join(lines, "\n"), nil
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observe wraps a resolver so every answered prompt is also reported to fn.
// The shell uses this to feed prompt/response pairs into the transcript.
func Observe(r commands.Resolver, fn func(label, answer string)) commands.Resolver {
	if fn == nil {
		return r
	}
	return commands.ResolverFunc(func(label, defaultText string, multiline bool) (string, error) {
		answer, err := r.AskText(label, defaultText, multiline)
		if err == nil {
			fn(label, answer)
		}
		return answer, err
	})
}
