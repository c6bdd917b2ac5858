// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command declaration, parsing, and
// dispatch system behind the shell.
package commands

import "strings"

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize splits a raw command line into tokens using POSIX shell quoting
// rules:
//
//   - Unquoted whitespace separates tokens.
//   - Single quotes preserve everything literally up to the closing quote.
//   - Double quotes preserve whitespace; backslash escapes `"` and `\`
//     inside them, any other backslash is kept literally.
//   - Outside quotes a backslash escapes the next character.
//   - Adjacent quoted and unquoted segments join into one token, and a
//     quoted empty string produces an empty token.
//
// Malformed input returns a *TokenizeError: "No closing quotation" for an
// unterminated quote, "No escaped character" for a trailing backslash.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var buf strings.Builder
	inToken := false

	flush := func() {
		if inToken {
			tokens = append(tokens, buf.String())
			buf.Reset()
			inToken = false
		}
	}

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			flush()
			i++

		case c == '\'':
			inToken = true
			i++
			for i < len(line) && line[i] != '\'' {
				buf.WriteByte(line[i])
				i++
			}
			if i >= len(line) {
				return nil, &TokenizeError{Msg: "No closing quotation"}
			}
			i++ // closing quote

		case c == '"':
			inToken = true
			i++
			closed := false
			for i < len(line) {
				d := line[i]
				if d == '"' {
					closed = true
					i++
					break
				}
				if d == '\\' && i+1 < len(line) && (line[i+1] == '"' || line[i+1] == '\\') {
					buf.WriteByte(line[i+1])
					i += 2
					continue
				}
				buf.WriteByte(d)
				i++
			}
			if !closed {
				return nil, &TokenizeError{Msg: "No closing quotation"}
			}

		case c == '\\':
			if i+1 >= len(line) {
				return nil, &TokenizeError{Msg: "No escaped character"}
			}
			inToken = true
			buf.WriteByte(line[i+1])
			i += 2

		default:
			inToken = true
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens, nil
}
