// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
//
// A command declares its arguments as plain Arg values; Register compiles
// them into a Plan that binds required arguments positionally in
// declaration order and optional arguments through --name flags. Dispatch
// tokenizes a typed line with shell quoting rules, binds tokens against
// the plan, prompts interactively for anything still unset, records
// history, and finally runs the handler.
//
// # Key Types
//
//   - Registry: named command table with dispatch
//   - Arg: one argument declaration (kind, variant, default, suggestions)
//   - Plan: compiled binding order for a command's arguments
//   - Values: bound argument mapping handed to handlers
//   - Engine: per-keystroke completion candidates for a typed line
//   - Resolver: interactive source for unset argument values
//   - History: recency-ordered store of previously submitted values
//
// Parsing failures are *ParseError values matched with errors.Is against
// the sentinel kinds (ErrUnknownOption, ErrMissingRequired, ...); their
// rendered messages are the exact strings shown in the shell.
package commands
