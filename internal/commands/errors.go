// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import (
	"errors"
	"strings"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Sentinel errors for every way a command line can fail before its handler
// runs. Callers match them with errors.Is; the rendered text is what the
// user sees in the shell.
var (
	// ErrTokenize reports unterminated quoting or a dangling escape.
	ErrTokenize = errors.New("tokenize error")

	// ErrUnknownOption reports a --flag token that no declaration owns.
	ErrUnknownOption = errors.New("unknown option")

	// ErrMissingOptionValue reports a --flag token at end of input with no
	// value token following it.
	ErrMissingOptionValue = errors.New("option requires a value")

	// ErrTooManyPositionals reports a positional token arriving after every
	// declaration has been filled.
	ErrTooManyPositionals = errors.New("too many positional arguments")

	// ErrInvalidValue reports a token that failed its declaration's
	// conversion (e.g. "abc" for an int argument).
	ErrInvalidValue = errors.New("invalid value")

	// ErrMissingRequired reports required arguments still unset after
	// tokens and prompting are exhausted.
	ErrMissingRequired = errors.New("missing required argument")

	// ErrCanceled reports that the user declined an interactive prompt.
	ErrCanceled = errors.New("canceled")

	// ErrUnknownCommand reports a first token that resolves to no
	// registered command.
	ErrUnknownCommand = errors.New("unknown command")
)

// =============================================================================
// PARSE ERROR
// =============================================================================

// ParseError is the single error type returned by parsing and dispatch.
// Kind is always one of the sentinel errors above; the remaining fields
// carry whatever context that kind needs to render its message.
type ParseError struct {
	Kind    error    // sentinel identifying the failure kind
	Option  string   // offending flag including dashes, e.g. "--hours"
	Arg     string   // argument name for positional and prompt failures
	Missing []string // unset required names in declaration order
	Command string   // unresolvable command name
	Err     error    // underlying cause, e.g. a strconv or tokenize error
}

// Error renders the message shown to the user. The wording is part of the
// interface: scripts and transcripts match on these strings.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrTokenize:
		return "Parse error: " + e.Err.Error()
	case ErrUnknownOption:
		return "Unknown option: " + e.Option
	case ErrMissingOptionValue:
		return "Option " + e.Option + " requires a value"
	case ErrTooManyPositionals:
		return "Too many positional arguments"
	case ErrInvalidValue:
		if e.Option != "" {
			return "Invalid value for " + e.Option
		}
		return "Invalid value for " + e.Arg
	case ErrMissingRequired:
		return "Missing: " + strings.Join(e.Missing, " ")
	case ErrCanceled:
		return "Canceled"
	case ErrUnknownCommand:
		return "Unknown: " + e.Command
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "parse failed"
}

// Is lets errors.Is(err, ErrUnknownOption) and friends work without
// unwrapping through the cause chain.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap exposes the underlying cause for errors.As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TOKENIZE ERROR
// =============================================================================

// TokenizeError describes malformed quoting in a raw command line.
type TokenizeError struct {
	Msg string
}

func (e *TokenizeError) Error() string {
	return e.Msg
}
