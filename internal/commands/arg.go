// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import (
	"path/filepath"
	"strconv"
)

// =============================================================================
// VALUE KINDS
// =============================================================================

// ValueKind selects how a raw token converts into a bound value.
type ValueKind int

const (
	// KindString binds the token verbatim.
	KindString ValueKind = iota
	// KindInt binds a base-10 integer.
	KindInt
	// KindFloat binds a 64-bit float.
	KindFloat
	// KindPath binds the token path-cleaned and enables directory-listing
	// suggestions by default.
	KindPath
)

// String returns the kind name for debug output.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPath:
		return "path"
	}
	return "unknown"
}

// Variant distinguishes how an argument is addressed on the command line.
type Variant int

const (
	// Positional arguments bind by token order.
	Positional Variant = iota
	// Flagged arguments bind via a --name token and are always optional.
	Flagged
)

// =============================================================================
// SUGGESTION SOURCE
// =============================================================================

// SuggestContext is the bundle handed to a suggestion source on every
// keystroke. It is rebuilt from scratch each time, so sources never see
// stale sibling values.
type SuggestContext struct {
	// Prefix is the text of the in-progress token. For a --name=val token
	// it is only the part after the "=".
	Prefix string
	// Command is the resolved command name, including its slash.
	Command string
	// ArgName is the name of the declaration being completed.
	ArgName string
	// Tokens is the raw whitespace-split token list, command included.
	Tokens []string
	// State is the live application snapshot supplied to the Engine.
	State map[string]any
	// History is the store the Engine was built with, or nil.
	History History
	// Siblings maps every already-bound argument name to its raw text.
	// Repeatable arguments contribute their last element.
	Siblings map[string]string
}

// SuggestFunc produces candidate strings for an in-progress token. The
// Engine filters the result against ctx.Prefix, so a source may return its
// full candidate set on every call.
type SuggestFunc func(ctx SuggestContext) []string

// =============================================================================
// ARGUMENT DECLARATION
// =============================================================================

// Arg declares one argument of a command. Declarations are plain data;
// Register compiles them into a Plan and they are never mutated afterwards.
type Arg struct {
	// Name identifies the argument in bound values, prompts, flags, and
	// history records.
	Name string
	// Kind selects the token conversion.
	Kind ValueKind
	// Variant is Positional or Flagged. A Positional declaration with a
	// non-nil Default is still treated as optional and addressable by
	// flag, mirroring requiredness being derived rather than declared.
	Variant Variant
	// Default preloads the binding for optional arguments. For Repeat
	// arguments a slice default seeds the accumulated list and a scalar
	// default seeds a one-element list.
	Default any
	// Repeat accumulates every binding into a list instead of keeping
	// only the last.
	Repeat bool
	// Prompt asks the interactive resolver for a value when none was
	// bound from tokens. Combined with Multiline it re-prompts even when
	// a value was bound, prefilled for editing.
	Prompt bool
	// PromptText overrides the label shown when prompting. Empty derives
	// "Enter <name>".
	PromptText string
	// Multiline makes a positional binding swallow the rest of the line
	// space-joined, and requests a multiline editor when prompting.
	Multiline bool
	// History records successfully bound values to the history store and
	// enables history-backed suggestions by default.
	History bool
	// Suggest overrides the default suggestion source.
	Suggest SuggestFunc
	// Help is shown next to the argument in completion listings.
	Help string
}

// Optional reports whether the argument may be omitted. Flagged variants
// are always optional; a Positional variant becomes optional the moment it
// carries a default.
func (a *Arg) Optional() bool {
	return a.Variant == Flagged || a.Default != nil
}

// Required is the complement of Optional.
func (a *Arg) Required() bool {
	return !a.Optional()
}

// Flag returns the --name spelling used to address an optional argument.
func (a *Arg) Flag() string {
	return "--" + a.Name
}

// promptLabel is the label handed to the resolver when prompting.
func (a *Arg) promptLabel() string {
	if a.PromptText != "" {
		return a.PromptText
	}
	return "Enter " + a.Name
}

// convert turns a raw token into the kind-typed value.
func (a *Arg) convert(raw string) (any, error) {
	switch a.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindPath:
		return filepath.Clean(raw), nil
	default:
		return raw, nil
	}
}
