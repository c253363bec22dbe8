// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for jaisu.
//
// Supports TOML configuration with sensible defaults, environment
// variable overrides, validation, and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CompletionConfig: Completion service endpoint and model
//   - StorageConfig: Snapshot backend selection and data directory
//   - Watcher: Debounced hot reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (JAISU_*)
//   - ~/.jaisu/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Completion.Model
//	timeout := cfg.Timeout()
package config
