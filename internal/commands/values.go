// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import "fmt"

// =============================================================================
// BOUND VALUES
// =============================================================================

// Values is the bound-argument mapping handed to a command handler after a
// successful parse. Every declaration has an entry: required arguments
// carry their bound value, optional arguments carry their bound value or
// default (possibly nil), repeat arguments always carry a []any.
type Values map[string]any

// Has reports whether the argument was bound to a non-nil value.
func (v Values) Has(name string) bool {
	val, ok := v[name]
	return ok && val != nil
}

// String returns the argument rendered as text, "" when unset.
func (v Values) String(name string) string {
	val, ok := v[name]
	if !ok || val == nil {
		return ""
	}
	if s, isStr := val.(string); isStr {
		return s
	}
	return fmt.Sprint(val)
}

// Int returns an int-kind binding, 0 when unset.
func (v Values) Int(name string) int {
	if n, ok := v[name].(int); ok {
		return n
	}
	return 0
}

// Float returns a float-kind binding, 0 when unset.
func (v Values) Float(name string) float64 {
	switch n := v[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Path returns a path-kind binding, "" when unset.
func (v Values) Path(name string) string {
	return v.String(name)
}

// List returns a repeat binding's accumulated elements, nil when unset.
func (v Values) List(name string) []any {
	list, _ := v[name].([]any)
	return list
}

// Strings returns a repeat binding rendered as text elements. A scalar
// binding yields a one-element slice, an unset argument yields nil.
func (v Values) Strings(name string) []string {
	val, ok := v[name]
	if !ok || val == nil {
		return nil
	}
	if list, isList := val.([]any); isList {
		out := make([]string, len(list))
		for i, el := range list {
			out[i] = fmt.Sprint(el)
		}
		return out
	}
	return []string{fmt.Sprint(val)}
}

// Ints returns a repeat binding's int elements; non-int elements are
// skipped.
func (v Values) Ints(name string) []int {
	list := v.List(name)
	out := make([]int, 0, len(list))
	for _, el := range list {
		if n, ok := el.(int); ok {
			out = append(out, n)
		}
	}
	return out
}

// Floats returns a repeat binding's float elements, converting int
// elements along the way.
func (v Values) Floats(name string) []float64 {
	list := v.List(name)
	out := make([]float64, 0, len(list))
	for _, el := range list {
		switch n := el.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

// Len returns the element count of a repeat binding, 1 for a bound
// scalar, 0 when unset.
func (v Values) Len(name string) int {
	val, ok := v[name]
	if !ok || val == nil {
		return 0
	}
	if list, isList := val.([]any); isList {
		return len(list)
	}
	return 1
}
