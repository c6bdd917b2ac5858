// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import (
	"context"
	"strings"
	"sync"
)

// =============================================================================
// HISTORY STORE
// =============================================================================

// History records values submitted for (command, argument) pairs and
// recalls them most-recent-first. Implementations live in the history
// package; the registry records after successful parses and the Engine
// reads for history-backed suggestions.
type History interface {
	Add(command, arg, value string) error
	Get(command, arg string, limit int) []string
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command with its bound argument values.
type Handler func(ctx context.Context, vals Values) error

// Command pairs a name with argument declarations and a handler. Register
// compiles Args into the binding plan; after that the command is immutable.
type Command struct {
	// Name is the full command name including the leading slash.
	Name string
	// Help is a one-line description shown in command completion.
	Help string
	// Args declares the arguments in declaration order.
	Args []Arg
	// Handler runs after a successful parse.
	Handler Handler

	plan *Plan
}

// Plan returns the compiled binding plan.
func (c *Command) Plan() *Plan {
	return c.plan
}

// =============================================================================
// REGISTRY
// =============================================================================

// RegistryConfig carries the collaborators dispatch needs.
type RegistryConfig struct {
	// Resolver answers interactive prompts for unset arguments.
	Resolver Resolver
	// History records argument values after successful parses; nil
	// disables recording.
	History History
	// Interactive enables prompting during dispatch. Script runners turn
	// it off or swap in a table-backed resolver.
	Interactive bool
}

// Registry holds the registered commands in registration order and
// dispatches typed lines against them.
type Registry struct {
	mu          sync.RWMutex
	commands    map[string]*Command
	order       []string
	resolver    Resolver
	history     History
	interactive bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		commands:    make(map[string]*Command),
		resolver:    cfg.Resolver,
		history:     cfg.History,
		interactive: cfg.Interactive,
	}
}

// Register compiles the command's argument plan and adds it. Registering
// an existing name replaces the previous definition in place.
func (r *Registry) Register(cmd *Command) error {
	plan, err := NewPlan(cmd.Args)
	if err != nil {
		return err
	}
	cmd.plan = plan

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Resolve returns the command registered under the exact name, or nil.
func (r *Registry) Resolve(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// History returns the attached history store, nil when none.
func (r *Registry) History() History {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.history
}

// Resolver returns the installed resolver, nil when none.
func (r *Registry) Resolver() Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolver
}

// Interactive reports whether dispatch currently prompts.
func (r *Registry) Interactive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.interactive
}

// SetResolver swaps the interactive resolver. Script runners install a
// table-backed resolver for the run and restore the original after.
func (r *Registry) SetResolver(res Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = res
}

// SetInteractive toggles the prompting phase of dispatch.
func (r *Registry) SetInteractive(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interactive = v
}

// =============================================================================
// DISPATCH
// =============================================================================

// Dispatch tokenizes a full line, resolves the command, parses the
// remaining tokens, records history, and runs the handler. The first token
// is tried verbatim and, when that misses and it lacks a slash, with "/"
// prefixed. Every pre-handler failure returns a *ParseError; an empty line
// is a no-op. History is recorded only after a fully successful parse, so
// a failed command never leaves partial traces.
func (r *Registry) Dispatch(ctx context.Context, line string) error {
	tokens, err := Tokenize(strings.TrimSpace(line))
	if err != nil {
		return &ParseError{Kind: ErrTokenize, Err: err}
	}
	if len(tokens) == 0 {
		return nil
	}

	name := tokens[0]
	cmd := r.Resolve(name)
	if cmd == nil && !strings.HasPrefix(name, "/") {
		cmd = r.Resolve("/" + name)
	}
	if cmd == nil {
		return &ParseError{Kind: ErrUnknownCommand, Command: name}
	}

	r.mu.RLock()
	opts := ParseOptions{Resolver: r.resolver, Interactive: r.interactive}
	history := r.history
	r.mu.RUnlock()

	vals, perr := ParseArgs(cmd.plan, tokens[1:], opts)
	if perr != nil {
		return perr
	}

	if history != nil {
		for _, entry := range cmd.plan.historyEntries(vals) {
			_ = history.Add(cmd.Name, entry[0], entry[1])
		}
	}
	return cmd.Handler(ctx, vals)
}
