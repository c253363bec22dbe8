// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for jaisu.
//
// Configuration is read from ~/.jaisu/config.toml with sensible defaults
// and environment variable overrides. A missing config file is not an
// error; the defaults apply.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete jaisu configuration.
type Config struct {
	// Completion configuration
	Completion CompletionConfig `toml:"completion"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// CompletionConfig contains completion service configuration.
type CompletionConfig struct {
	// BaseURL is the URL of the completion service
	BaseURL string `toml:"base_url"`
	// Model is the default completion model
	Model string `toml:"model"`
	// TimeoutSecs bounds non-streaming requests, in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// Stream requests streamed replies
	Stream bool `toml:"stream"`
	// RequestsPerSecond paces outgoing requests (0 = default)
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// StorageConfig contains session persistence configuration.
type StorageConfig struct {
	// Backend selects the snapshot backend: "file" or "sqlite"
	Backend string `toml:"backend"`
	// Dir is the data directory (empty = ~/.jaisu)
	Dir string `toml:"dir"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// ShowTimestamps shows message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
	// CompactMode reduces padding in the transcript
	CompactMode bool `toml:"compact_mode"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `toml:"level"`
	// File is the log file path (empty = <dir>/jaisu.log)
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			BaseURL:           "http://127.0.0.1:11434",
			Model:             "qwen2.5:7b",
			TimeoutSecs:       30,
			Stream:            true,
			RequestsPerSecond: 5,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			CompactMode:    false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the jaisu configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".jaisu"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir returns the effective data directory for snapshots and logs.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// LogFile returns the effective log file path.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jaisu.log"), nil
}

// Timeout returns the completion request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Completion.TimeoutSecs) * time.Second
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when the file is absent. Environment overrides are applied
// last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path. A missing
// file is not an error; a file that fails to parse or validate is.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills in zero values with defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = def.Completion.BaseURL
	}
	if c.Completion.Model == "" {
		c.Completion.Model = def.Completion.Model
	}
	if c.Completion.TimeoutSecs <= 0 {
		c.Completion.TimeoutSecs = def.Completion.TimeoutSecs
	}
	if c.Completion.RequestsPerSecond <= 0 {
		c.Completion.RequestsPerSecond = def.Completion.RequestsPerSecond
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies JAISU_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	// JAISU_COMPLETION_URL
	if url := os.Getenv("JAISU_COMPLETION_URL"); url != "" {
		c.Completion.BaseURL = url
	}

	// JAISU_MODEL
	if model := os.Getenv("JAISU_MODEL"); model != "" {
		c.Completion.Model = model
	}

	// JAISU_STREAM
	if stream := os.Getenv("JAISU_STREAM"); stream != "" {
		c.Completion.Stream = stream == "1" || strings.ToLower(stream) == "true"
	}

	// JAISU_TIMEOUT_SECS
	if timeout := os.Getenv("JAISU_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.Completion.TimeoutSecs = secs
		}
	}

	// JAISU_STORAGE_BACKEND
	if backend := os.Getenv("JAISU_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}

	// JAISU_STORAGE_DIR
	if dir := os.Getenv("JAISU_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	// JAISU_LOG_LEVEL
	if level := os.Getenv("JAISU_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be \"file\" or \"sqlite\", got %q", c.Storage.Backend)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}

	if c.Completion.TimeoutSecs <= 0 {
		return fmt.Errorf("completion.timeout_secs must be positive, got %d", c.Completion.TimeoutSecs)
	}
	return nil
}

// SlogLevel maps the configured log level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file path.
func SaveToPath(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
