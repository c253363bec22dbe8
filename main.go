// jaisu TUI - terminal chat sessions backed by a local completion service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/jaisu-tui/internal/chat"
	"github.com/jeranaias/jaisu-tui/internal/completion"
	"github.com/jeranaias/jaisu-tui/internal/config"
	"github.com/jeranaias/jaisu-tui/internal/storage"
	"github.com/jeranaias/jaisu-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("jaisu %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "jaisu: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, logLevel, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	snap, closeSnap, err := openSnapshotter(cfg, dataDir)
	if err != nil {
		return err
	}
	defer closeSnap()

	store := storage.NewSessionStore(snap)
	store.SetLogger(logger)
	store.Initialize()

	client := completion.NewClientWithConfig(&completion.ClientConfig{
		BaseURL:           cfg.Completion.BaseURL,
		Timeout:           cfg.Timeout(),
		DefaultModel:      cfg.Completion.Model,
		RequestsPerSecond: cfg.Completion.RequestsPerSecond,
	})

	controller := chat.NewController(store, client, chat.Config{
		Model:  cfg.Completion.Model,
		Stream: cfg.Completion.Stream,
	})
	controller.SetLogger(logger)

	view := ui.New(store, controller, ui.Options{
		Theme:          cfg.UI.Theme,
		ModelName:      cfg.Completion.Model,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		CompactMode:    cfg.UI.CompactMode,
		RequestTimeout: cfg.Timeout(),
	})

	p := tea.NewProgram(view, tea.WithAltScreen())

	// Store mutations re-render the view, including streaming growth.
	store.Subscribe(func() {
		p.Send(ui.StoreChangedMsg{})
	})

	// Hot reload currently covers log level only; endpoint and storage
	// changes need a restart.
	if path, err := config.ConfigPath(); err == nil {
		if watcher, err := config.NewWatcher(path, time.Second, func(next *config.Config) {
			logLevel.Set(next.SlogLevel())
			logger.Info("config changed on disk, log level applied", "level", next.Log.Level)
		}); err == nil {
			watcher.SetLogger(logger)
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	// Final flush so a mutation racing the quit keystroke is not lost.
	store.Persist()
	return nil
}

// openLogger sets up structured logging to the configured log file. The
// terminal stays clean for the TUI. The returned LevelVar lets the
// config watcher change the level while the program runs.
func openLogger(cfg *config.Config) (*slog.Logger, *slog.LevelVar, func(), error) {
	path, err := cfg.LogFile()
	if err != nil {
		return nil, nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, level, func() { f.Close() }, nil
}

// openSnapshotter picks the persistence backend from configuration.
func openSnapshotter(cfg *config.Config, dataDir string) (storage.Snapshotter, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		snap, err := storage.OpenSQLiteSnapshotter(filepath.Join(dataDir, "conversations.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite snapshot store: %w", err)
		}
		return snap, func() { snap.Close() }, nil
	default:
		snap, err := storage.NewFileSnapshotter(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file snapshot store: %w", err)
		}
		return snap, func() {}, nil
	}
}
