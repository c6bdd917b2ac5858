// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// CANDIDATES
// =============================================================================

// Candidate is one completion offer. Accepting it replaces the byte range
// from Start to the end of the typed line with Text.
type Candidate struct {
	// Text is the replacement text.
	Text string
	// Help is auxiliary display metadata, the command description for
	// command-name candidates and empty for value candidates.
	Help string
	// Start is the byte offset in the typed line where the replaced
	// region begins.
	Start int
}

// defaultHistoryLimit caps history-backed default suggestions per scan.
const defaultHistoryLimit = 10

// =============================================================================
// SUGGESTION ENGINE
// =============================================================================

// Engine turns a partially typed line into completion candidates. It is
// stateless between calls: every keystroke re-runs a fresh scan, so
// suggestions never go stale as earlier tokens change.
type Engine struct {
	registry *Registry
	history  History
	stateFn  func() map[string]any
}

// NewEngine builds an Engine over a registry. history may be nil when no
// store is attached; stateFn supplies the live snapshot handed to
// suggestion sources and may be nil.
func NewEngine(registry *Registry, history History, stateFn func() map[string]any) *Engine {
	return &Engine{registry: registry, history: history, stateFn: stateFn}
}

// Suggest produces candidates for the given line. Lines not starting with
// "/" get none. A single in-progress token completes command names; after
// that the in-progress token completes values for whichever declaration it
// would bind to.
func (e *Engine) Suggest(line string) []Candidate {
	s := strings.TrimLeftFunc(line, unicode.IsSpace)
	if !strings.HasPrefix(s, "/") {
		return nil
	}
	trailingSpace := strings.HasSuffix(s, " ")
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil
	}

	if len(tokens) == 1 && !trailingSpace {
		return e.commandCandidates(line, tokens[0])
	}

	cmd := e.registry.Resolve(tokens[0])
	if cmd == nil || cmd.plan.Len() == 0 {
		return nil
	}

	argTokens := tokens[1:]
	inProgress := ""
	completed := argTokens
	if !trailingSpace && len(argTokens) > 0 {
		inProgress = argTokens[len(argTokens)-1]
		completed = argTokens[:len(argTokens)-1]
	}

	prefix := inProgress
	replaceLen := len(prefix)
	if strings.HasPrefix(prefix, "--") {
		if _, val, hasEq := strings.Cut(prefix, "="); hasEq {
			prefix = val
			replaceLen = len(val)
		}
	}

	active, siblings := scanCompleted(cmd.plan, completed, inProgress)
	if active == nil {
		return nil
	}
	src := active.Suggest
	if src == nil {
		src = e.defaultSource(active)
	}
	if src == nil {
		return nil
	}

	sctx := SuggestContext{
		Prefix:   prefix,
		Command:  tokens[0],
		ArgName:  active.Name,
		Tokens:   tokens,
		History:  e.history,
		Siblings: siblings,
	}
	if e.stateFn != nil {
		sctx.State = e.stateFn()
	}

	var out []Candidate
	for _, text := range src(sctx) {
		if prefix != "" && !strings.HasPrefix(text, prefix) {
			continue
		}
		out = append(out, Candidate{Text: text, Start: len(line) - replaceLen})
	}
	return out
}

// commandCandidates matches registered command names against the first
// in-progress token.
func (e *Engine) commandCandidates(line, partial string) []Candidate {
	var out []Candidate
	for _, cmd := range e.registry.Commands() {
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, Candidate{
				Text:  cmd.Name,
				Help:  cmd.Help,
				Start: len(line) - len(partial),
			})
		}
	}
	return out
}

// defaultSource picks the built-in suggestion source for declarations that
// define none: history-recording arguments recall prior values, path
// arguments list the filesystem.
func (e *Engine) defaultSource(a *Arg) SuggestFunc {
	switch {
	case a.History:
		return func(ctx SuggestContext) []string {
			if ctx.History == nil {
				return nil
			}
			return ctx.History.Get(ctx.Command, ctx.ArgName, defaultHistoryLimit)
		}
	case a.Kind == KindPath:
		return func(ctx SuggestContext) []string {
			return ListPath(ctx.Prefix, nil)
		}
	}
	return nil
}

// =============================================================================
// COMPLETED-TOKEN SCAN
// =============================================================================

// scanCompleted re-runs a lenient form of the token scan over the tokens
// that are already finished, determining which declaration the in-progress
// token would bind to and collecting raw sibling values for dependent
// sources. Unlike the real parser it never fails: unknown flags are
// skipped and nothing is converted.
//
// The active declaration is, in order: the flag an in-progress --name
// spells; the declaration of a trailing flag still awaiting its value; the
// declaration the immediately preceding token bound to, when repeatable;
// otherwise the next unfilled declaration in binding order.
func scanCompleted(plan *Plan, completed []string, inProgress string) (*Arg, map[string]string) {
	bindings := plan.bindings()
	siblings := make(map[string]string)

	byFlag := make(map[string]*binding, len(plan.flags))
	for pos := range bindings {
		if bindings[pos].arg.Optional() {
			byFlag[bindings[pos].arg.Flag()] = &bindings[pos]
		}
	}

	nextUnfilled := func(start int) int {
		for start < len(bindings) && bindings[start].provided {
			start++
		}
		return start
	}

	record := func(b *binding, raw string) {
		b.provided = true
		siblings[b.arg.Name] = raw
	}

	var pending *Arg   // trailing known flag with no value yet
	var lastBound *Arg // declaration bound by the final completed token
	cursor := nextUnfilled(0)
	i := 0
	for i < len(completed) {
		tok := completed[i]
		if strings.HasPrefix(tok, "--") {
			key, val, hasEq := strings.Cut(tok, "=")
			b := byFlag[key]
			if b == nil {
				i++
				continue
			}
			if !hasEq {
				if i+1 >= len(completed) {
					pending = b.arg
					break
				}
				i++
				val = completed[i]
			}
			record(b, val)
			if i == len(completed)-1 {
				lastBound = b.arg
			}
		} else {
			cursor = nextUnfilled(cursor)
			if cursor >= len(bindings) {
				break
			}
			b := &bindings[cursor]
			record(b, tok)
			if i == len(completed)-1 {
				lastBound = b.arg
			}
			if !b.arg.Repeat {
				cursor++
			}
		}
		i++
	}

	var active *Arg
	switch {
	case strings.HasPrefix(inProgress, "--"):
		name, _, _ := strings.Cut(inProgress, "=")
		active = plan.flagArg(name)
	case pending != nil:
		active = pending
	case lastBound != nil && lastBound.Repeat:
		active = lastBound
	default:
		if pos := nextUnfilled(0); pos < len(bindings) {
			active = bindings[pos].arg
		}
	}
	return active, siblings
}

// =============================================================================
// PATH LISTING
// =============================================================================

// ListPath lists directory entries matching a path prefix. Directories
// gain a trailing separator so accepting one keeps the completion going;
// files are filtered by extension when a set is given. Unreadable
// directories yield nothing. This is the default source for path-kind
// arguments; the suggest package wraps it for explicit use.
func ListPath(prefix string, extensions []string) []string {
	dir := "."
	partial := ""
	switch {
	case prefix == "":
	case strings.HasSuffix(prefix, string(os.PathSeparator)) || strings.HasSuffix(prefix, "/"):
		dir = prefix
	default:
		if info, err := os.Stat(prefix); err == nil && info.IsDir() {
			dir = prefix
		} else {
			dir = filepath.Dir(prefix)
			partial = filepath.Base(prefix)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if partial != "" && !strings.HasPrefix(name, partial) {
			continue
		}
		full := name
		if dir != "." {
			full = filepath.Join(dir, name)
		}
		if entry.IsDir() {
			out = append(out, full+string(os.PathSeparator))
			continue
		}
		if len(extensions) > 0 && !hasExtension(name, extensions) {
			continue
		}
		out = append(out, full)
	}
	sort.Strings(out)
	return out
}

func hasExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}
