// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/slashline/internal/commands"
	"github.com/jeranaias/slashline/internal/config"
	"github.com/jeranaias/slashline/internal/interaction"
	"github.com/jeranaias/slashline/internal/transcript"
	"github.com/peterh/liner"
)

// errNotCommand marks an input line that no command and no hook consumed.
var errNotCommand = errors.New("not a command")

// =============================================================================
// SHELL
// =============================================================================

// Shell ties the command registry, suggestion engine, output sink, and
// optional transcript recorder into an interactive session. The same Shell
// drives both the liner REPL (Run) and headless scripts (RunScript).
type Shell struct {
	registry *commands.Registry
	engine   *commands.Engine
	console  *Console
	queue    *Capture
	recorder *transcript.Recorder

	mu          sync.Mutex
	cfg         *config.Config
	promptText  string
	prompts     []transcript.Prompt
	startHooks  []func(*Shell)
	beforeHooks []func(line string)
	afterHooks  []func(line string, err error)
}

// Option configures a Shell.
type Option func(*Shell)

// WithConsole replaces the default console sink. Tests pass a Console
// writing to a buffer.
func WithConsole(c *Console) Option {
	return func(s *Shell) { s.console = c }
}

// WithRecorder attaches a transcript recorder. Every handled line becomes
// one recorded entry.
func WithRecorder(r *transcript.Recorder) Option {
	return func(s *Shell) { s.recorder = r }
}

// New assembles a shell over a command registry. The engine may be nil to
// disable completion; cfg nil falls back to defaults.
func New(cfg *config.Config, registry *commands.Registry, engine *commands.Engine, opts ...Option) *Shell {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Shell{
		registry:   registry,
		engine:     engine,
		queue:      NewCapture(),
		cfg:        cfg,
		promptText: cfg.Shell.Prompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.console == nil {
		s.console = NewConsole(WithColor(colorsFor(cfg.Shell.Color)))
	}
	return s
}

// Out returns the sink handlers and hooks print through. Output is queued
// per command and flushed to the console when the command completes, so
// transcript entries group the output under the line that produced it.
func (s *Shell) Out() Output {
	return s.queue
}

// Console returns the terminal-facing sink.
func (s *Shell) Console() *Console {
	return s.console
}

// ApplyConfig picks up reloadable settings from a changed configuration.
// The prompt text and color mode take effect on the next line.
func (s *Shell) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	s.cfg = cfg
	s.promptText = cfg.Shell.Prompt
	s.mu.Unlock()
	s.console.SetColor(colorsFor(cfg.Shell.Color))
}

func (s *Shell) currentConfig() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// =============================================================================
// HOOKS
// =============================================================================

// OnStart registers a hook run once when a session begins, before any
// input is read. Start hook output goes straight to the console; it
// belongs to no command entry.
func (s *Shell) OnStart(fn func(*Shell)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startHooks = append(s.startHooks, fn)
}

// BeforeDispatch registers a hook run before each input line is handled.
func (s *Shell) BeforeDispatch(fn func(line string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeHooks = append(s.beforeHooks, fn)
}

// AfterDispatch registers a hook run after each input line with the
// dispatch result. Registering at least one after hook also makes lines
// without a leading slash legal: they are handed to the hooks instead of
// being rejected, which is how chat-style applications accept free text.
func (s *Shell) AfterDispatch(fn func(line string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterHooks = append(s.afterHooks, fn)
}

// fireHook runs one hook, converting a panic into a sink error so a
// misbehaving hook cannot take down the session.
func (s *Shell) fireHook(label string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.queue.Err(fmt.Sprintf("%s error: %v", label, r))
		}
	}()
	fn()
}

func (s *Shell) runStartHooks() {
	s.mu.Lock()
	hooks := append([]func(*Shell){}, s.startHooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h := h
		s.fireHook("on_start", func() { h(s) })
	}
}

func (s *Shell) runBeforeHooks(line string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.beforeHooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h := h
		s.fireHook("before_dispatch", func() { h(line) })
	}
}

func (s *Shell) runAfterHooks(line string, err error) {
	s.mu.Lock()
	hooks := append([]func(string, error){}, s.afterHooks...)
	s.mu.Unlock()
	for _, h := range hooks {
		h := h
		s.fireHook("after_dispatch", func() { h(line, err) })
	}
}

func (s *Shell) hasAfterHooks() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.afterHooks) > 0
}

// =============================================================================
// LINE HANDLING
// =============================================================================

// handleLine runs one input line through the before hooks, dispatch, the
// after hooks, and the output queue, then records the transcript entry.
// The returned error is the dispatch result the script runner decides on;
// it has already been reported through the sink.
func (s *Shell) handleLine(ctx context.Context, text string, fromScript bool) error {
	s.runBeforeHooks(text)
	s.resetPrompts()

	var dispatchErr error
	var failText string
	switch {
	case strings.HasPrefix(text, "/"):
		if err := s.registry.Dispatch(ctx, text); err != nil {
			dispatchErr = err
			var perr *commands.ParseError
			switch {
			case errors.As(err, &perr):
				failText = perr.Error()
			case fromScript:
				failText = "Command failed: " + err.Error()
			default:
				failText = err.Error()
			}
		}
	case s.hasAfterHooks():
		// Free text is handed to the after hooks.
	default:
		failText = "Type '/' to run a command"
		if fromScript {
			failText = "Commands must start with '/'"
		}
		dispatchErr = errNotCommand
	}
	if failText != "" {
		s.queue.Err(failText)
	}

	s.runAfterHooks(text, dispatchErr)

	outputs := s.queue.Drain()
	Replay(s.console, outputs)
	s.recordEntry(text, dispatchErr == nil, failText, outputs)
	return dispatchErr
}

func (s *Shell) resetPrompts() {
	s.mu.Lock()
	s.prompts = nil
	s.mu.Unlock()
}

// recordPrompt collects one answered prompt for the entry being built. It
// is handed to interaction.Observe so both liner and headless resolvers
// feed the transcript.
func (s *Shell) recordPrompt(label, answer string) {
	s.mu.Lock()
	s.prompts = append(s.prompts, transcript.Prompt{Label: label, Answer: answer})
	s.mu.Unlock()
}

func (s *Shell) recordEntry(line string, ok bool, failText string, outputs []transcript.Output) {
	if s.recorder == nil {
		return
	}
	s.mu.Lock()
	prompts := s.prompts
	s.prompts = nil
	s.mu.Unlock()
	s.recorder.Record(transcript.Entry{
		Line:    line,
		OK:      ok,
		Error:   failText,
		Outputs: outputs,
		Prompts: prompts,
	})
}

// flushConsole drains queued output straight to the console, outside any
// command entry.
func (s *Shell) flushConsole() {
	Replay(s.console, s.queue.Drain())
}

// =============================================================================
// INTERACTIVE LOOP
// =============================================================================

// Run starts the interactive REPL and blocks until the user exits with
// Ctrl+C, Ctrl+D, or a bare q, quit, or exit. Line history persists to the
// configured history file; tab completion goes through the suggestion
// engine; missing-argument prompts share the same line editor.
func (s *Shell) Run(ctx context.Context) error {
	if err := RequiresTTY("interactive shell"); err != nil {
		return err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	histPath, err := s.currentConfig().ShellHistoryFile()
	if err == nil && histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer saveLineHistory(line, histPath)
	}

	if s.engine != nil {
		line.SetWordCompleter(s.completeLine)
	}

	// Prompts for unset arguments go through the same liner instance unless
	// the caller installed a resolver of its own. Either way, answered
	// prompts feed the transcript entry under construction.
	prevRes := s.registry.Resolver()
	res := prevRes
	if res == nil {
		res = interaction.NewLineResolver(line)
	}
	s.registry.SetResolver(interaction.Observe(res, s.recordPrompt))
	defer s.registry.SetResolver(prevRes)

	s.runStartHooks()
	s.flushConsole()
	s.console.Info("Type '/' for commands, or 'q' to quit.")

	for {
		input, err := line.Prompt(s.promptString())
		if err != nil {
			// Ctrl+C (ErrPromptAborted) and Ctrl+D (io.EOF) both end the
			// session.
			s.console.Info("Goodbye! 👋")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if isExitCommand(input) {
			s.console.Info("Goodbye! 👋")
			return nil
		}
		s.handleLine(ctx, input, false)
	}
}

// completeLine adapts the suggestion engine to liner's word completer.
// Only the text left of the cursor is scanned; every candidate shares the
// same replacement start, so the line head splits at the first one.
func (s *Shell) completeLine(typed string, pos int) (string, []string, string) {
	head, tail := typed[:pos], typed[pos:]
	cands := s.engine.Suggest(head)
	if len(cands) == 0 {
		return head, nil, tail
	}
	texts := make([]string, 0, len(cands))
	for _, c := range cands {
		texts = append(texts, c.Text)
	}
	return head[:cands[0].Start], texts, tail
}

func (s *Shell) promptString() string {
	s.mu.Lock()
	p := s.promptText
	s.mu.Unlock()
	if p == "" {
		p = "# "
	}
	if s.console.colorEnabled() {
		return promptStyle.Render(p)
	}
	return p
}

// isExitCommand reports session-ending words, bare or slash-prefixed.
func isExitCommand(s string) bool {
	switch strings.ToLower(strings.TrimPrefix(s, "/")) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

// saveLineHistory persists liner history with owner-only permissions.
func saveLineHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// SaveTranscript finalizes the recorded session and writes it out. An
// empty path derives a timestamped name under the configured transcript
// directory; an empty format falls back to the configured default. The
// written path is returned.
func (s *Shell) SaveTranscript(path, format string) (string, error) {
	if s.recorder == nil {
		return "", errors.New("no transcript recorder attached")
	}
	if format == "" {
		format = s.currentConfig().Transcript.Format
	}
	w, err := transcript.WriterFor(format)
	if err != nil {
		return "", err
	}
	session := s.recorder.Finalize()
	if path == "" {
		dir, err := s.currentConfig().TranscriptDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, transcript.DefaultFilename(session, w))
	}
	if err := transcript.WriteFile(session, w, path); err != nil {
		return "", err
	}
	return path, nil
}
