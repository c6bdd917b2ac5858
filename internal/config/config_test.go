// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for slashline.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND VALIDATION TESTS
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.History.Backend != "file" {
		t.Errorf("Expected default history backend 'file', got '%s'", cfg.History.Backend)
	}
	if cfg.History.Limit != 10 {
		t.Errorf("Expected default history limit 10, got %d", cfg.History.Limit)
	}
	if cfg.Shell.Prompt != "# " {
		t.Errorf("Expected default prompt '# ', got '%s'", cfg.Shell.Prompt)
	}
	if cfg.Shell.Color != "auto" {
		t.Errorf("Expected default color 'auto', got '%s'", cfg.Shell.Color)
	}
	if cfg.Transcript.Format != "md" {
		t.Errorf("Expected default transcript format 'md', got '%s'", cfg.Transcript.Format)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "invalid history backend",
			config: func() *Config {
				c := Default()
				c.History.Backend = "redis"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative history limit",
			config: func() *Config {
				c := Default()
				c.History.Limit = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid color mode",
			config: func() *Config {
				c := Default()
				c.Shell.Color = "sometimes"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "invalid transcript format",
			config: func() *Config {
				c := Default()
				c.Transcript.Format = "pdf"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "backend case insensitive",
			config: func() *Config {
				c := Default()
				c.History.Backend = "SQLite"
				return c
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	c := Default()
	c.History.Backend = "redis"
	c.Transcript.Format = "pdf"

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "history.backend") || !strings.Contains(msg, "transcript.format") {
		t.Errorf("joined error missing fields: %s", msg)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()

	if c.History.Backend != "file" {
		t.Errorf("backend = %q, want file", c.History.Backend)
	}
	if c.Shell.Prompt != "# " {
		t.Errorf("prompt = %q, want '# '", c.Shell.Prompt)
	}
	if c.History.Limit != 10 {
		t.Errorf("limit = %d, want 10", c.History.Limit)
	}

	// Explicit values survive.
	c2 := Config{Shell: ShellConfig{Prompt: ">> "}}
	c2.SetDefaults()
	if c2.Shell.Prompt != ">> " {
		t.Errorf("explicit prompt overwritten: %q", c2.Shell.Prompt)
	}
}

func TestConfig_Migrate(t *testing.T) {
	c := Default()
	c.Transcript.Format = "markdown"
	c.Shell.Color = "on"
	c.Migrate()

	if c.Transcript.Format != "md" {
		t.Errorf("format = %q, want md", c.Transcript.Format)
	}
	if c.Shell.Color != "always" {
		t.Errorf("color = %q, want always", c.Shell.Color)
	}

	c.Shell.Color = "off"
	c.Migrate()
	if c.Shell.Color != "never" {
		t.Errorf("color = %q, want never", c.Shell.Color)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("SLASHLINE_HISTORY_BACKEND", "sqlite")
	t.Setenv("SLASHLINE_PROMPT", "sl> ")
	t.Setenv("SLASHLINE_FAIL_FAST", "true")

	c := Default()
	c.ApplyEnvOverrides()

	if c.History.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", c.History.Backend)
	}
	if c.Shell.Prompt != "sl> " {
		t.Errorf("prompt = %q, want 'sl> '", c.Shell.Prompt)
	}
	if !c.Script.FailFast {
		t.Error("fail_fast should be true")
	}
}

// =============================================================================
// LOAD AND SAVE TESTS
// =============================================================================

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[history]
backend = "sqlite"
limit = 5

[shell]
prompt = "$ "

[script]
fail_fast = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.History.Backend != "sqlite" {
		t.Errorf("backend = %q", cfg.History.Backend)
	}
	if cfg.History.Limit != 5 {
		t.Errorf("limit = %d", cfg.History.Limit)
	}
	if cfg.Shell.Prompt != "$ " {
		t.Errorf("prompt = %q", cfg.Shell.Prompt)
	}
	if !cfg.Script.FailFast {
		t.Error("fail_fast should be true")
	}
	// Unset sections fall back to defaults.
	if cfg.Shell.Color != "auto" {
		t.Errorf("color = %q, want auto", cfg.Shell.Color)
	}
	if cfg.Transcript.Format != "md" {
		t.Errorf("format = %q, want md", cfg.Transcript.Format)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"history": {"backend": "memory"}, "shell": {"color": "never"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("backend = %q", cfg.History.Backend)
	}
	if cfg.Shell.Color != "never" {
		t.Errorf("color = %q", cfg.Shell.Color)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[history]\nbackend = \"redis\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("invalid backend should fail validation")
	}

	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed TOML should fail")
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Shell.Prompt = "~ "
	cfg.History.Backend = "sqlite"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Shell.Prompt != "~ " || loaded.History.Backend != "sqlite" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Transcript.Format = "html"

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Transcript.Format != "html" {
		t.Errorf("format = %q, want html", loaded.Transcript.Format)
	}
}

// =============================================================================
// RESOLVED LOCATION TESTS
// =============================================================================

func TestResolvedLocations(t *testing.T) {
	explicit := Config{
		History:    HistoryConfig{Backend: "file", Path: "/tmp/custom.json"},
		Shell:      ShellConfig{HistoryFile: "/tmp/lines"},
		Transcript: TranscriptConfig{Dir: "/tmp/out"},
	}

	if p, err := explicit.HistoryPath(); err != nil || p != "/tmp/custom.json" {
		t.Errorf("HistoryPath = %q, %v", p, err)
	}
	if p, err := explicit.ShellHistoryFile(); err != nil || p != "/tmp/lines" {
		t.Errorf("ShellHistoryFile = %q, %v", p, err)
	}
	if p, err := explicit.TranscriptDir(); err != nil || p != "/tmp/out" {
		t.Errorf("TranscriptDir = %q, %v", p, err)
	}

	blank := Default()
	if p, err := blank.HistoryPath(); err != nil || !strings.HasSuffix(p, filepath.Join("slashline", "history.json")) {
		t.Errorf("default HistoryPath = %q, %v", p, err)
	}
	blank.History.Backend = "sqlite"
	if p, err := blank.HistoryPath(); err != nil || !strings.HasSuffix(p, filepath.Join("slashline", "history.db")) {
		t.Errorf("sqlite HistoryPath = %q, %v", p, err)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[shell]\nprompt = \"a> \"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("[shell]\nprompt = \"b> \"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Shell.Prompt != "b> " {
			t.Errorf("reloaded prompt = %q, want 'b> '", cfg.Shell.Prompt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherSkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[shell]\nprompt = \"a> \"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) {
		reloaded <- cfg
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("broken file should not reload, got %+v", cfg)
	case <-time.After(time.Second):
	}
}
