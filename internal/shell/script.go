// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/slashline/internal/commands"
	"github.com/jeranaias/slashline/internal/interaction"
)

// =============================================================================
// SCRIPT RUNNER
// =============================================================================

// ScriptOptions configures a headless script run.
type ScriptOptions struct {
	// FailFast stops the run at the first failure that ends a script:
	// handler errors and lines no command consumed. Parse failures are
	// reported and skipped so later lines still run.
	FailFast bool

	// Answers resolves interactive prompts from a table instead of a
	// terminal. Nil leaves the registry's resolver untouched unless
	// prompting is enabled, in which case an empty table stands in so
	// prompts fall back to their defaults.
	Answers *interaction.AnswerTable
}

// RunScript executes command lines without a terminal. Blank lines and
// "#" comments are skipped; a bare q, quit, or exit ends the run early.
// Failures are reported through the sink as they happen; when any line
// failed the summary error reports how many.
func (s *Shell) RunScript(ctx context.Context, lines []string, opts ScriptOptions) error {
	answers := opts.Answers
	if answers == nil && s.registry.Interactive() {
		answers = interaction.NewAnswerTable(nil)
	}
	if answers != nil {
		prevRes := s.registry.Resolver()
		prevInt := s.registry.Interactive()
		s.registry.SetResolver(interaction.Observe(answers, s.recordPrompt))
		s.registry.SetInteractive(true)
		defer func() {
			s.registry.SetResolver(prevRes)
			s.registry.SetInteractive(prevInt)
		}()
	}

	s.runStartHooks()
	s.flushConsole()

	var total, failed int
	for _, raw := range lines {
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if isExitCommand(text) {
			break
		}
		total++
		err := s.handleLine(ctx, text, true)
		if err == nil {
			continue
		}
		failed++
		if opts.FailFast && stopsScript(err) {
			break
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, total)
	}
	return nil
}

// RunScriptFile reads a script file and runs its lines.
func (s *Shell) RunScriptFile(ctx context.Context, path string, opts ScriptOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return s.RunScript(ctx, strings.Split(string(data), "\n"), opts)
}

// stopsScript reports whether a failure ends a fail-fast run.
func stopsScript(err error) bool {
	var perr *commands.ParseError
	return !errors.As(err, &perr)
}
