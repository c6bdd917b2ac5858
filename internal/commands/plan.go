// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import "fmt"

// =============================================================================
// COMMAND PLAN
// =============================================================================

// Plan is the compiled, immutable binding order for one command's
// arguments: required declarations first in declaration order, then
// optional declarations in declaration order, each optional addressable by
// its --name flag. Positional tokens walk this combined order, so extra
// positionals spill into unfilled optionals before being rejected.
type Plan struct {
	args  []Arg          // as declared
	order []int          // indexes into args: requireds first, then optionals
	flags map[string]int // "--name" -> index into args, optionals only
}

// NewPlan compiles declarations into a Plan. It rejects duplicate argument
// names; everything else is accepted as declared.
func NewPlan(args []Arg) (*Plan, error) {
	p := &Plan{
		args:  make([]Arg, len(args)),
		flags: make(map[string]int),
	}
	copy(p.args, args)

	seen := make(map[string]struct{}, len(args))
	for i := range p.args {
		name := p.args[i].Name
		if name == "" {
			return nil, fmt.Errorf("argument %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate argument name %q", name)
		}
		seen[name] = struct{}{}
	}

	for i := range p.args {
		if p.args[i].Required() {
			p.order = append(p.order, i)
		}
	}
	for i := range p.args {
		if p.args[i].Optional() {
			p.order = append(p.order, i)
			p.flags[p.args[i].Flag()] = i
		}
	}
	return p, nil
}

// Args returns the declarations in their original declaration order.
func (p *Plan) Args() []Arg {
	out := make([]Arg, len(p.args))
	copy(out, p.args)
	return out
}

// Len reports the number of declarations.
func (p *Plan) Len() int {
	return len(p.args)
}

// arg returns the declaration at a binding-order position.
func (p *Plan) arg(pos int) *Arg {
	return &p.args[p.order[pos]]
}

// flagArg resolves a --name token to its declaration, nil when unknown.
// The name part of a --name=value token must be split off by the caller.
func (p *Plan) flagArg(flag string) *Arg {
	i, ok := p.flags[flag]
	if !ok {
		return nil
	}
	return &p.args[i]
}

// =============================================================================
// BINDING STATE
// =============================================================================

// binding is the per-parse mutable state for one declaration. A fresh set
// is built for every parse and every completion scan; the Plan itself is
// never written.
type binding struct {
	arg      *Arg
	provided bool
	value    any // scalar value, or []any for repeat
}

// bindings creates the runtime state in binding order, values preloaded
// from defaults: a repeat argument always starts with a list (the default
// list copied, a scalar default wrapped, or empty), a non-repeat optional
// starts at its default.
func (p *Plan) bindings() []binding {
	out := make([]binding, len(p.order))
	for pos := range p.order {
		a := p.arg(pos)
		b := binding{arg: a}
		switch {
		case a.Repeat && a.Optional():
			b.value = repeatSeed(a.Default)
		case a.Repeat:
			b.value = []any{}
		case a.Optional():
			b.value = a.Default
		}
		out[pos] = b
	}
	return out
}

// bind records a converted value: repeat appends onto the seeded list,
// non-repeat keeps only the latest.
func (b *binding) bind(v any) {
	if b.arg.Repeat {
		list, _ := b.value.([]any)
		b.value = append(list, v)
	} else {
		b.value = v
	}
	b.provided = true
}

// repeatSeed normalizes a repeat default into the accumulated-list shape.
func repeatSeed(def any) []any {
	switch d := def.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, len(d))
		copy(out, d)
		return out
	case []string:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []int:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	case []float64:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out
	default:
		return []any{d}
	}
}

// historyEntries yields (name, value) pairs for declarations that record
// history, skipping unset values. Repeat values contribute one entry per
// element so each is individually recallable in completions.
func (p *Plan) historyEntries(vals Values) [][2]string {
	var out [][2]string
	for _, i := range p.order {
		a := &p.args[i]
		if !a.History {
			continue
		}
		v, ok := vals[a.Name]
		if !ok || v == nil {
			continue
		}
		if list, isList := v.([]any); isList {
			for _, el := range list {
				out = append(out, [2]string{a.Name, fmt.Sprint(el)})
			}
			continue
		}
		out = append(out, [2]string{a.Name, fmt.Sprint(v)})
	}
	return out
}
