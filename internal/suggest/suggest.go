// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest provides ready-made suggestion sources for command
// arguments: fixed choice lists, numeric ranges, filesystem paths,
// history recall, and dependent lookups driven by a sibling argument's
// current value. Each constructor returns a commands.SuggestFunc that can
// be assigned directly to an Arg's Suggest field.
package suggest

import (
	"strconv"
	"strings"

	"github.com/jeranaias/slashline/internal/commands"
)

// historyLimit is the default recall depth for FromHistory.
const historyLimit = 10

// Choices suggests from a fixed list, filtered by the typed prefix.
func Choices(items ...string) commands.SuggestFunc {
	fixed := make([]string, len(items))
	copy(fixed, items)
	return func(ctx commands.SuggestContext) []string {
		var out []string
		for _, item := range fixed {
			if strings.HasPrefix(item, ctx.Prefix) {
				out = append(out, item)
			}
		}
		return out
	}
}

// Numbers suggests the inclusive range start..stop in the given step,
// rendered in decimal and filtered by the typed prefix. A non-positive
// step yields nothing.
func Numbers(start, stop, step int) commands.SuggestFunc {
	return func(ctx commands.SuggestContext) []string {
		if step <= 0 {
			return nil
		}
		var out []string
		for n := start; n <= stop; n += step {
			s := strconv.Itoa(n)
			if strings.HasPrefix(s, ctx.Prefix) {
				out = append(out, s)
			}
		}
		return out
	}
}

// Paths suggests filesystem entries under the typed prefix. Directories
// carry a trailing separator; files are kept only when their extension
// (dot included) appears in extensions, or always when none are given.
func Paths(extensions ...string) commands.SuggestFunc {
	return func(ctx commands.SuggestContext) []string {
		return commands.ListPath(ctx.Prefix, extensions)
	}
}

// FromHistory suggests previously submitted values for the active
// (command, argument) pair, most recent first, filtered by the typed
// prefix. limit caps the recall depth; zero or negative means the
// default of 10.
func FromHistory(limit int) commands.SuggestFunc {
	if limit <= 0 {
		limit = historyLimit
	}
	return func(ctx commands.SuggestContext) []string {
		if ctx.History == nil {
			return nil
		}
		var out []string
		for _, v := range ctx.History.Get(ctx.Command, ctx.ArgName, limit) {
			if strings.HasPrefix(v, ctx.Prefix) {
				out = append(out, v)
			}
		}
		return out
	}
}

// Dependent builds suggestions from another argument's current value. The
// parent value is re-read from the sibling snapshot on every keystroke,
// so editing the parent immediately reshapes the child's candidates. An
// unbound parent reads as the empty string.
func Dependent(parent string, fetch func(parentValue string, ctx commands.SuggestContext) []string) commands.SuggestFunc {
	return func(ctx commands.SuggestContext) []string {
		return fetch(ctx.Siblings[parent], ctx)
	}
}
