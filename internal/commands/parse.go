// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import (
	"fmt"
	"strings"
)

// =============================================================================
// INTERACTIVE RESOLVER
// =============================================================================

// Resolver supplies values for arguments the command line left unset. It
// blocks until the user answers: a line editor in the interactive shell, a
// lookup table in script mode. Returning an error means the user declined,
// which is distinct from returning an empty answer.
type Resolver interface {
	AskText(label, defaultText string, multiline bool) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(label, defaultText string, multiline bool) (string, error)

// AskText implements Resolver.
func (f ResolverFunc) AskText(label, defaultText string, multiline bool) (string, error) {
	return f(label, defaultText, multiline)
}

// ParseOptions carries the per-invocation collaborators of ParseArgs.
type ParseOptions struct {
	// Resolver answers prompts for unset arguments. Ignored unless
	// Interactive is set.
	Resolver Resolver
	// Interactive enables the prompting phase. When false, unset required
	// arguments fail immediately with ErrMissingRequired.
	Interactive bool
}

// =============================================================================
// VALUE PARSER
// =============================================================================

// ParseArgs binds tokens against a Plan and returns the complete value
// mapping, or a *ParseError describing the first failure.
//
// The token scan handles --name value and --name=value for optionals and
// walks positional tokens through the next unfilled slot in binding order.
// A repeat argument appends each occurrence; a multiline non-repeat
// positional swallows the rest of the tokens space-joined. After the scan,
// interactive mode prompts for every unset required or prompt-enabled
// argument (and re-prompts multiline prompt arguments for editing); repeat
// prompts accept comma-separated lists that replace the prior binding.
// Required arguments still unset at the end fail with ErrMissingRequired.
func ParseArgs(plan *Plan, argv []string, opts ParseOptions) (Values, error) {
	bindings := plan.bindings()

	byFlag := make(map[string]*binding, len(plan.flags))
	for pos := range bindings {
		b := &bindings[pos]
		if b.arg.Optional() {
			byFlag[b.arg.Flag()] = b
		}
	}

	nextUnfilled := func(start int) int {
		for start < len(bindings) && bindings[start].provided {
			start++
		}
		return start
	}

	cursor := nextUnfilled(0)
	i := 0
	for i < len(argv) {
		tok := argv[i]
		if strings.HasPrefix(tok, "--") {
			key, val, hasEq := strings.Cut(tok, "=")
			b := byFlag[key]
			if b == nil {
				return nil, &ParseError{Kind: ErrUnknownOption, Option: key}
			}
			raw := val
			if !hasEq {
				if i+1 >= len(argv) {
					return nil, &ParseError{Kind: ErrMissingOptionValue, Option: key}
				}
				raw = argv[i+1]
				i++
			}
			v, err := b.arg.convert(raw)
			if err != nil {
				return nil, &ParseError{Kind: ErrInvalidValue, Option: key, Err: err}
			}
			b.bind(v)
		} else {
			cursor = nextUnfilled(cursor)
			if cursor >= len(bindings) {
				return nil, &ParseError{Kind: ErrTooManyPositionals}
			}
			b := &bindings[cursor]
			raw := tok
			if b.arg.Multiline && !b.arg.Repeat {
				raw = strings.Join(argv[i:], " ")
				i = len(argv) - 1
			}
			v, err := b.arg.convert(raw)
			if err != nil {
				return nil, &ParseError{Kind: ErrInvalidValue, Arg: b.arg.Name, Err: err}
			}
			b.bind(v)
			if !b.arg.Repeat {
				cursor++
			}
		}
		i++
	}

	missing := missingRequired(bindings)
	needsPrompt := false
	for pos := range bindings {
		b := &bindings[pos]
		if b.arg.Prompt && (!b.provided || (opts.Interactive && b.arg.Multiline)) {
			needsPrompt = true
			break
		}
	}

	if (len(missing) > 0 || needsPrompt) && opts.Interactive && opts.Resolver != nil {
		if err := resolvePrompts(bindings, opts.Resolver); err != nil {
			return nil, err
		}
		if missing = missingRequired(bindings); len(missing) > 0 {
			return nil, &ParseError{Kind: ErrMissingRequired, Missing: missing}
		}
	} else if len(missing) > 0 {
		return nil, &ParseError{Kind: ErrMissingRequired, Missing: missing}
	}

	vals := make(Values, len(bindings))
	for pos := range bindings {
		vals[bindings[pos].arg.Name] = bindings[pos].value
	}
	return vals, nil
}

// missingRequired lists unset required names in binding order, which for
// required arguments is their declaration order.
func missingRequired(bindings []binding) []string {
	var out []string
	for pos := range bindings {
		if bindings[pos].arg.Required() && !bindings[pos].provided {
			out = append(out, bindings[pos].arg.Name)
		}
	}
	return out
}

// resolvePrompts runs the interactive phase. Prompted are every required
// or prompt-enabled argument that is still unset, plus every multiline
// prompt argument even when set (prefilled for editing). An empty answer
// keeps an optional argument's current value and leaves a required one
// unset; the caller re-checks required coverage afterwards.
func resolvePrompts(bindings []binding, resolver Resolver) error {
	for pos := range bindings {
		b := &bindings[pos]
		prompt := false
		if (b.arg.Required() || b.arg.Prompt) && !b.provided {
			prompt = true
		} else if b.arg.Prompt && b.arg.Multiline {
			prompt = true
		}
		if !prompt {
			continue
		}

		ans, err := resolver.AskText(b.arg.promptLabel(), promptDefault(b), b.arg.Multiline)
		if err != nil {
			return &ParseError{Kind: ErrCanceled, Arg: b.arg.Name, Err: err}
		}
		if ans == "" {
			if b.arg.Optional() {
				b.provided = true
			}
			continue
		}

		if b.arg.Repeat {
			var items []any
			for _, part := range strings.Split(ans, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				v, err := b.arg.convert(part)
				if err != nil {
					return &ParseError{Kind: ErrInvalidValue, Arg: b.arg.Name, Err: err}
				}
				items = append(items, v)
			}
			// An answer with no usable elements behaves like an empty
			// answer: the prior binding stands, a required argument stays
			// unset for the final coverage check.
			if len(items) > 0 {
				b.value = items
				b.provided = true
			} else if b.arg.Optional() {
				b.provided = true
			}
		} else {
			v, err := b.arg.convert(ans)
			if err != nil {
				return &ParseError{Kind: ErrInvalidValue, Arg: b.arg.Name, Err: err}
			}
			b.value = v
			b.provided = true
		}
	}
	return nil
}

// promptDefault renders the prefill text for a prompt: the current value
// when one exists (repeat elements comma-joined), otherwise empty.
func promptDefault(b *binding) string {
	switch v := b.value.(type) {
	case nil:
		return ""
	case []any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = fmt.Sprint(el)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
