// slashline - a slash-command shell wrapped around a demo task board.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jeranaias/slashline/internal/commands"
	"github.com/jeranaias/slashline/internal/config"
	"github.com/jeranaias/slashline/internal/history"
	"github.com/jeranaias/slashline/internal/interaction"
	"github.com/jeranaias/slashline/internal/shell"
	"github.com/jeranaias/slashline/internal/suggest"
	"github.com/jeranaias/slashline/internal/tasks"
	"github.com/jeranaias/slashline/internal/transcript"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// answerFlags collects repeated -answers assignments.
type answerFlags []string

func (a *answerFlags) String() string { return strings.Join(*a, ",") }

func (a *answerFlags) Set(v string) error {
	*a = append(*a, v)
	return nil
}

type options struct {
	configPath     string
	scriptPath     string
	answers        []string
	answersFile    string
	transcriptPath string
	format         string
	failFast       bool
	tuiPrompts     bool
	noColor        bool
}

func main() {
	var answers answerFlags
	configPath := flag.String("config", "", "config file `path` (default: ~/.config/slashline/config.toml)")
	scriptPath := flag.String("script", "", "run commands from `file` and exit")
	flag.Var(&answers, "answers", "prompt answer as `key=value`, repeatable (script mode)")
	answersFile := flag.String("answers-file", "", "JSON `file` of prompt answers (script mode)")
	transcriptPath := flag.String("transcript", "", "write the session transcript to `file`")
	format := flag.String("format", "", "transcript format: md, json, or html")
	failFast := flag.Bool("fail-fast", false, "stop a script at the first failed command")
	tuiPrompts := flag.Bool("tui-prompts", false, "answer argument prompts in a full-screen editor")
	noColor := flag.Bool("no-color", false, "disable colored output")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("slashline %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	err := run(options{
		configPath:     *configPath,
		scriptPath:     *scriptPath,
		answers:        answers,
		answersFile:    *answersFile,
		transcriptPath: *transcriptPath,
		format:         *format,
		failFast:       *failFast,
		tuiPrompts:     *tuiPrompts,
		noColor:        *noColor,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := loadConfig(opts.configPath)
	if opts.noColor {
		cfg.Shell.Color = "never"
	}

	store, cleanup, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	board := tasks.NewBoard()
	reg := commands.NewRegistry(commands.RegistryConfig{
		History:     store,
		Interactive: true,
	})
	engine := commands.NewEngine(reg, store, boardState(board))
	sh := shell.New(cfg, reg, engine, shell.WithRecorder(transcript.NewRecorder()))

	if err := registerCommands(reg, sh, board); err != nil {
		return err
	}

	sh.OnStart(func(s *shell.Shell) {
		s.Out().Info(fmt.Sprintf("slashline %s - task board demo", Version))
	})

	ctx := context.Background()

	if opts.scriptPath != "" {
		table, err := buildAnswers(opts.answers, opts.answersFile)
		if err != nil {
			return err
		}
		runErr := sh.RunScriptFile(ctx, opts.scriptPath, shell.ScriptOptions{
			FailFast: opts.failFast || cfg.Script.FailFast,
			Answers:  table,
		})
		if werr := writeTranscript(sh, opts); werr != nil && runErr == nil {
			runErr = werr
		}
		return runErr
	}

	if opts.tuiPrompts {
		reg.SetResolver(interaction.NewPromptProgram())
	}

	if w := watchConfig(opts.configPath, sh); w != nil {
		defer w.Close()
	}

	runErr := sh.Run(ctx)
	if werr := writeTranscript(sh, opts); werr != nil && runErr == nil {
		runErr = werr
	}
	return runErr
}

// =============================================================================
// WIRING
// =============================================================================

// loadConfig loads the config file, falling back to defaults so a broken
// file never blocks the shell.
func loadConfig(path string) *config.Config {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
		return config.Default()
	}
	return cfg
}

// openHistory opens the configured history backend. The returned cleanup
// runs at shutdown.
func openHistory(cfg *config.Config) (commands.History, func(), error) {
	switch cfg.History.Backend {
	case "", "memory":
		return history.NewMemoryStore(), func() {}, nil
	case "file":
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, nil, err
		}
		store, err := history.NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "sqlite":
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, nil, err
		}
		store, err := history.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
}

// buildAnswers assembles the headless prompt table from -answers-file and
// -answers flags, the latter winning on key collisions.
func buildAnswers(assignments []string, file string) (*interaction.AnswerTable, error) {
	if file == "" && len(assignments) == 0 {
		return nil, nil
	}
	table := interaction.NewAnswerTable(nil)
	if file != "" {
		loaded, err := interaction.LoadAnswersFile(file)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	for _, a := range assignments {
		if err := table.SetAssignment(a); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// watchConfig starts live config reloading for the interactive shell.
// Watching is best effort; when it cannot start the shell simply keeps
// its startup config.
func watchConfig(path string, sh *shell.Shell) *config.Watcher {
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return nil
		}
		path = p
	}
	w, err := config.NewWatcher(path, sh.ApplyConfig)
	if err != nil {
		return nil
	}
	if err := w.Watch(); err != nil {
		w.Close()
		return nil
	}
	return w
}

// writeTranscript saves the session when -transcript or -format asked
// for one.
func writeTranscript(sh *shell.Shell, opts options) error {
	if opts.transcriptPath == "" && opts.format == "" {
		return nil
	}
	path, err := sh.SaveTranscript(opts.transcriptPath, opts.format)
	if err != nil {
		return err
	}
	sh.Console().OK("Transcript written to " + path)
	return nil
}

// =============================================================================
// DEMO COMMANDS
// =============================================================================

// boardState snapshots the live board for the suggestion engine. The
// snapshot is rebuilt per keystroke, so completions follow the board.
func boardState(board *tasks.Board) func() map[string]any {
	return func() map[string]any {
		ids := board.IDs()
		short := make([]string, len(ids))
		for i, id := range ids {
			short[i] = tasks.ShortID(id)
		}
		return map[string]any{
			"ids":    short,
			"labels": board.Labels(),
		}
	}
}

// boardIDs proposes the short IDs of every task on the board.
func boardIDs(ctx commands.SuggestContext) []string {
	ids, _ := ctx.State["ids"].([]string)
	return ids
}

// knownLabels proposes every label already in use on the board.
func knownLabels(ctx commands.SuggestContext) []string {
	labels, _ := ctx.State["labels"].([]string)
	return labels
}

func registerCommands(reg *commands.Registry, sh *shell.Shell, board *tasks.Board) error {
	cmds := []*commands.Command{
		{
			Name: "/add",
			Help: "Add a task to the board",
			Args: []commands.Arg{
				{Name: "name", Kind: commands.KindString, Prompt: true, History: true},
				{Name: "hours", Kind: commands.KindInt, Variant: commands.Flagged, Default: 1},
				{Name: "labels", Kind: commands.KindString, Variant: commands.Flagged, Repeat: true,
					Suggest: suggest.Choices("auth", "backend", "bug", "docs", "frontend", "infra")},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				t := board.Add(vals.String("name"), float64(vals.Int("hours")), vals.Strings("labels"))
				sh.Out().OK(fmt.Sprintf("Added %s: %s", tasks.ShortID(t.ID), t.Title))
				return nil
			},
		},
		{
			Name: "/list",
			Help: "List tasks, optionally by status",
			Args: []commands.Arg{
				{Name: "status", Kind: commands.KindString, Default: "",
					Suggest: suggest.Choices("todo", "doing", "done")},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				var status tasks.Status
				if raw := vals.String("status"); raw != "" {
					s, err := tasks.ParseStatus(raw)
					if err != nil {
						return err
					}
					status = s
				}
				list := board.List(status)
				if len(list) == 0 {
					sh.Out().Info("No tasks. Add one with /add.")
					return nil
				}
				sh.Out().Table("Tasks", taskHeaders(), taskRows(list))
				return nil
			},
		},
		{
			Name: "/set",
			Help: "Move a task to another status",
			Args: []commands.Arg{
				{Name: "id", Kind: commands.KindString, Prompt: true, Suggest: boardIDs},
				{Name: "status", Kind: commands.KindString, Prompt: true,
					Suggest: suggest.Dependent("id", func(id string, ctx commands.SuggestContext) []string {
						t, err := board.Get(id)
						if err != nil {
							return nil
						}
						var out []string
						for _, s := range tasks.Transitions(t.Status) {
							if strings.HasPrefix(s.String(), ctx.Prefix) {
								out = append(out, s.String())
							}
						}
						return out
					})},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				status, err := tasks.ParseStatus(vals.String("status"))
				if err != nil {
					return err
				}
				t, err := board.SetStatus(vals.String("id"), status)
				if err != nil {
					return err
				}
				sh.Out().OK(fmt.Sprintf("%s is now %s", tasks.ShortID(t.ID), t.Status))
				return nil
			},
		},
		{
			Name: "/delete",
			Help: "Remove a task",
			Args: []commands.Arg{
				{Name: "id", Kind: commands.KindString, Prompt: true, Suggest: boardIDs},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				id := vals.String("id")
				if err := board.Delete(id); err != nil {
					return err
				}
				sh.Out().OK("Deleted " + tasks.ShortID(id))
				return nil
			},
		},
		{
			Name: "/search",
			Help: "Find tasks by title, label, or note",
			Args: []commands.Arg{
				{Name: "query", Kind: commands.KindString, Prompt: true, Multiline: true,
					History: true, Suggest: suggest.FromHistory(5)},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				query := vals.String("query")
				hits := board.Search(query)
				if len(hits) == 0 {
					sh.Out().Warn(fmt.Sprintf("No tasks match %q", query))
					return nil
				}
				sh.Out().Table("Matches", taskHeaders(), taskRows(hits))
				return nil
			},
		},
		{
			Name: "/note",
			Help: "Append a note to a task",
			Args: []commands.Arg{
				{Name: "id", Kind: commands.KindString, Prompt: true, Suggest: boardIDs},
				{Name: "text", Kind: commands.KindString, Prompt: true, Multiline: true},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				t, err := board.AddNote(vals.String("id"), vals.String("text"))
				if err != nil {
					return err
				}
				sh.Out().OK(fmt.Sprintf("Noted on %s (%d notes)", tasks.ShortID(t.ID), len(t.Notes)))
				return nil
			},
		},
		{
			Name: "/label",
			Help: "Attach labels to a task",
			Args: []commands.Arg{
				{Name: "id", Kind: commands.KindString, Prompt: true, Suggest: boardIDs},
				{Name: "label", Kind: commands.KindString, Repeat: true, Prompt: true,
					Suggest: knownLabels},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				id := vals.String("id")
				var t *tasks.Task
				for _, l := range vals.Strings("label") {
					var err error
					t, err = board.Label(id, l)
					if err != nil {
						return err
					}
				}
				if t != nil {
					sh.Out().OK(fmt.Sprintf("%s labeled: %s", tasks.ShortID(t.ID), strings.Join(t.Labels, ", ")))
				}
				return nil
			},
		},
		{
			Name: "/hours",
			Help: "Re-estimate a task",
			Args: []commands.Arg{
				{Name: "id", Kind: commands.KindString, Prompt: true, Suggest: boardIDs},
				{Name: "hours", Kind: commands.KindFloat, Prompt: true,
					Suggest: suggest.Numbers(1, 8, 1)},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				t, err := board.SetHours(vals.String("id"), vals.Float("hours"))
				if err != nil {
					return err
				}
				sh.Out().OK(fmt.Sprintf("%s estimated at %g hours", tasks.ShortID(t.ID), t.Hours))
				return nil
			},
		},
		{
			Name: "/stats",
			Help: "Show board totals",
			Handler: func(_ context.Context, _ commands.Values) error {
				counts := board.Counts()
				rows := make([][]string, 0, 3)
				for _, s := range tasks.Statuses() {
					rows = append(rows, []string{s.String(), strconv.Itoa(counts[s])})
				}
				sh.Out().Table("Board", []string{"Status", "Tasks"}, rows)
				if labels := board.Labels(); len(labels) > 0 {
					sh.Out().Text("Labels: " + strings.Join(labels, ", "))
				}
				return nil
			},
		},
		{
			Name: "/echo",
			Help: "Print text back",
			Args: []commands.Arg{
				{Name: "text", Kind: commands.KindString, Multiline: true, Default: ""},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				sh.Out().Text(vals.String("text"))
				return nil
			},
		},
		{
			Name: "/export",
			Help: "Write the session transcript",
			Args: []commands.Arg{
				{Name: "file", Kind: commands.KindPath, Default: ""},
				{Name: "format", Kind: commands.KindString, Variant: commands.Flagged, Default: "",
					Suggest: suggest.Choices("md", "json", "html")},
			},
			Handler: func(_ context.Context, vals commands.Values) error {
				path, err := sh.SaveTranscript(vals.Path("file"), vals.String("format"))
				if err != nil {
					return err
				}
				sh.Out().OK("Transcript written to " + path)
				return nil
			},
		},
		{
			Name: "/help",
			Help: "List available commands",
			Handler: func(_ context.Context, _ commands.Values) error {
				cmds := reg.Commands()
				sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
				var b strings.Builder
				b.WriteString("## Commands\n\n")
				for _, c := range cmds {
					fmt.Fprintf(&b, "- `%s` %s\n", c.Name, c.Help)
				}
				b.WriteString("\nPress Tab to complete commands and argument values.\n")
				sh.Out().Markdown(b.String())
				return nil
			},
		},
		{
			Name: "/quit",
			Help: "End the session",
			Handler: func(_ context.Context, _ commands.Values) error {
				sh.Out().Info("Goodbye! 👋")
				return nil
			},
		},
	}

	for _, c := range cmds {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register %s: %w", c.Name, err)
		}
	}
	return nil
}

func taskHeaders() []string {
	return []string{"ID", "Status", "Hours", "Title", "Labels"}
}

func taskRows(list []*tasks.Task) [][]string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{
			tasks.ShortID(t.ID),
			t.Status.String(),
			strconv.FormatFloat(t.Hours, 'g', -1, 64),
			t.Title,
			strings.Join(t.Labels, ", "),
		})
	}
	return rows
}
