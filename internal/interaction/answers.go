// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package interaction provides the prompt resolvers that answer for command
// arguments the input line left unset.
package interaction

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/slashline/internal/commands"
)

// =============================================================================
// ANSWER TABLE
// =============================================================================

// AnswerTable answers prompts from a prepared table, which is how scripted
// runs satisfy interactive arguments. A prompt label is resolved against the
// table keys from most to least specific; an unmatched prompt falls back to
// the default text, so scripts only need entries for values they change.
type AnswerTable struct {
	answers  map[string]string
	canceled map[string]bool
}

var _ commands.Resolver = (*AnswerTable)(nil)

// NewAnswerTable builds a table from an initial answer set. A nil map is
// fine; entries can be added later with Set.
func NewAnswerTable(answers map[string]string) *AnswerTable {
	t := &AnswerTable{
		answers:  make(map[string]string, len(answers)),
		canceled: make(map[string]bool),
	}
	for k, v := range answers {
		t.answers[k] = v
	}
	return t
}

// Set stores an answer under key.
func (t *AnswerTable) Set(key, value string) {
	t.answers[key] = value
}

// SetCanceled marks a key as declined: a prompt resolving to it aborts.
func (t *AnswerTable) SetCanceled(key string) {
	t.canceled[key] = true
}

// SetAssignment parses a key=value pair as given on the command line.
func (t *AnswerTable) SetAssignment(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid answer %q: want key=value", s)
	}
	t.Set(key, value)
	return nil
}

// AskText implements commands.Resolver.
func (t *AnswerTable) AskText(label, defaultText string, multiline bool) (string, error) {
	for _, key := range lookupKeys(label) {
		if t.canceled[key] {
			return "", ErrAborted
		}
		if v, ok := t.answers[key]; ok {
			return v, nil
		}
	}
	return defaultText, nil
}

// lookupKeys lists the table keys a prompt label matches, most specific
// first: the exact label, the simplified label (lowercased, spaces to
// underscores, colons dropped), and the bare argument name for labels of
// the "Enter name" form.
func lookupKeys(label string) []string {
	simplified := strings.ReplaceAll(strings.ToLower(label), " ", "_")
	simplified = strings.ReplaceAll(simplified, ":", "")
	keys := []string{label, simplified}

	words := strings.Fields(strings.ToLower(label))
	if len(words) > 1 {
		for _, w := range words {
			if w == "enter" {
				keys = append(keys, words[len(words)-1])
				break
			}
		}
	}
	return keys
}

// =============================================================================
// JSON LOADING
// =============================================================================

// LoadAnswers builds a table from a JSON object. String values answer the
// matching prompt verbatim, numbers and booleans are rendered to text,
// arrays are comma-joined for repeat arguments, and an explicit null marks
// the key as declined.
func LoadAnswers(data []byte) (*AnswerTable, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}

	t := NewAnswerTable(nil)
	for k, v := range raw {
		if v == nil {
			t.SetCanceled(k)
			continue
		}
		text, err := renderAnswer(v)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", k, err)
		}
		t.Set(k, text)
	}
	return t, nil
}

// LoadAnswersFile reads a JSON answer file from disk.
func LoadAnswersFile(path string) (*AnswerTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}
	return LoadAnswers(data)
}

func renderAnswer(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, el := range val {
			text, err := renderAnswer(el)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
