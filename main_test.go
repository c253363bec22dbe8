// jaisu TUI - terminal chat sessions backed by a local completion service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jeranaias/jaisu-tui/internal/config"
)

func TestOpenLogger_LevelAppliesLive(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "info"
	cfg.Log.File = filepath.Join(t.TempDir(), "jaisu.log")

	logger, level, closeLog, err := openLogger(cfg)
	if err != nil {
		t.Fatalf("openLogger failed: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("Debug should be disabled at info level")
	}

	// The config watcher raises the level through the shared LevelVar.
	level.Set(slog.LevelDebug)
	if !logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Debug should be enabled after the level var changes")
	}
}
