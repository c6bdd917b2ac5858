// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for slashline.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/slashline/config.toml
//   - $XDG_CONFIG_HOME/slashline/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/slashline/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete slashline configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// History configures the argument value history store.
	History HistoryConfig `toml:"history" json:"history"`

	// Shell configures the interactive surface.
	Shell ShellConfig `toml:"shell" json:"shell"`

	// Transcript configures session transcript writing.
	Transcript TranscriptConfig `toml:"transcript" json:"transcript"`

	// Script configures script execution.
	Script ScriptConfig `toml:"script" json:"script"`
}

// HistoryConfig contains argument history store configuration.
type HistoryConfig struct {
	// Backend selects the store implementation: "memory", "file", "sqlite"
	Backend string `toml:"backend" json:"backend"`
	// Path is the store location (empty = default under the config dir)
	Path string `toml:"path" json:"path"`
	// Limit is the number of recent values offered per completion
	Limit int `toml:"limit" json:"limit"`
}

// ShellConfig contains interactive shell configuration.
type ShellConfig struct {
	// Prompt is the text shown before each input line
	Prompt string `toml:"prompt" json:"prompt"`
	// Color controls styled output: "auto", "always", "never"
	Color string `toml:"color" json:"color"`
	// HistoryFile is the line-editor history location (empty = default)
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// TranscriptConfig contains transcript output configuration.
type TranscriptConfig struct {
	// Dir is where transcripts are written (empty = default under the config dir)
	Dir string `toml:"dir" json:"dir"`
	// Format is the default transcript format: "md", "json", "html"
	Format string `toml:"format" json:"format"`
}

// ScriptConfig contains script runner configuration.
type ScriptConfig struct {
	// FailFast stops a script at the first failed command
	FailFast bool `toml:"fail_fast" json:"fail_fast"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		History: HistoryConfig{
			Backend: "file",
			Path:    "",
			Limit:   10,
		},

		Shell: ShellConfig{
			Prompt: "# ",
			Color:  "auto",
		},

		Transcript: TranscriptConfig{
			Format: "md",
		},

		Script: ScriptConfig{
			FailFast: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the slashline configuration directory path.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(base, "slashline"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finalize(cfg)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finalize(cfg)
		}
	}

	return finalize(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format is chosen by extension, defaulting to TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// finalize runs the shared post-load pipeline.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.Migrate()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# slashline configuration file")
	fmt.Fprintln(file, "# Generated by slashline - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validBackends := map[string]bool{"memory": true, "file": true, "sqlite": true}
	if !validBackends[strings.ToLower(c.History.Backend)] {
		errs = append(errs, ValidationError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: memory, file, sqlite", c.History.Backend),
		})
	}

	if c.History.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.limit",
			Message: "must be non-negative",
		})
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.Shell.Color)] {
		errs = append(errs, ValidationError{
			Field:   "shell.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: auto, always, never", c.Shell.Color),
		})
	}

	validFormats := map[string]bool{"md": true, "json": true, "html": true}
	if !validFormats[strings.ToLower(c.Transcript.Format)] {
		errs = append(errs, ValidationError{
			Field:   "transcript.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: md, json, html", c.Transcript.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DEFAULTS AND MIGRATION
// =============================================================================

// SetDefaults sets default values for any missing configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.History.Backend == "" {
		c.History.Backend = defaults.History.Backend
	}
	if c.History.Limit == 0 {
		c.History.Limit = defaults.History.Limit
	}

	if c.Shell.Prompt == "" {
		c.Shell.Prompt = defaults.Shell.Prompt
	}
	if c.Shell.Color == "" {
		c.Shell.Color = defaults.Shell.Color
	}

	if c.Transcript.Format == "" {
		c.Transcript.Format = defaults.Transcript.Format
	}
}

// Migrate normalizes aliases from older configuration files.
func (c *Config) Migrate() {
	switch strings.ToLower(c.Transcript.Format) {
	case "markdown":
		c.Transcript.Format = "md"
	case "htm":
		c.Transcript.Format = "html"
	}

	switch strings.ToLower(c.Shell.Color) {
	case "on":
		c.Shell.Color = "always"
	case "off":
		c.Shell.Color = "never"
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SLASHLINE_HISTORY_BACKEND: overrides history.backend
//   - SLASHLINE_HISTORY_PATH: overrides history.path
//   - SLASHLINE_PROMPT: overrides shell.prompt
//   - SLASHLINE_COLOR: overrides shell.color
//   - SLASHLINE_TRANSCRIPT_DIR: overrides transcript.dir
//   - SLASHLINE_TRANSCRIPT_FORMAT: overrides transcript.format
//   - SLASHLINE_FAIL_FAST: set to "1" or "true" to stop scripts on error
func (c *Config) ApplyEnvOverrides() {
	if backend := os.Getenv("SLASHLINE_HISTORY_BACKEND"); backend != "" {
		c.History.Backend = backend
	}
	if path := os.Getenv("SLASHLINE_HISTORY_PATH"); path != "" {
		c.History.Path = path
	}
	if prompt := os.Getenv("SLASHLINE_PROMPT"); prompt != "" {
		c.Shell.Prompt = prompt
	}
	if color := os.Getenv("SLASHLINE_COLOR"); color != "" {
		c.Shell.Color = color
	}
	if dir := os.Getenv("SLASHLINE_TRANSCRIPT_DIR"); dir != "" {
		c.Transcript.Dir = dir
	}
	if format := os.Getenv("SLASHLINE_TRANSCRIPT_FORMAT"); format != "" {
		c.Transcript.Format = format
	}
	if failFast := os.Getenv("SLASHLINE_FAIL_FAST"); failFast != "" {
		c.Script.FailFast = failFast == "1" || strings.ToLower(failFast) == "true"
	}
}

// =============================================================================
// RESOLVED LOCATIONS
// =============================================================================

// HistoryPath returns the history store location, defaulting to a file
// under the config directory named for the backend.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if strings.ToLower(c.History.Backend) == "sqlite" {
		return filepath.Join(dir, "history.db"), nil
	}
	return filepath.Join(dir, "history.json"), nil
}

// ShellHistoryFile returns the line-editor history location.
func (c *Config) ShellHistoryFile() (string, error) {
	if c.Shell.HistoryFile != "" {
		return c.Shell.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shell_history"), nil
}

// TranscriptDir returns where transcripts are written.
func (c *Config) TranscriptDir() (string, error) {
	if c.Transcript.Dir != "" {
		return c.Transcript.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "transcripts"), nil
}
