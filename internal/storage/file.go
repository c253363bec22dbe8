// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/jaisu-tui/internal/util"
)

// SnapshotFileName is the single JSON file holding the whole session,
// mirroring the one storage key the web front end used.
const SnapshotFileName = "conversations.json"

// =============================================================================
// FILE SNAPSHOTTER
// =============================================================================

// FileSnapshotter persists session snapshots as a single JSON file,
// written atomically with fsync so a crash never corrupts an earlier
// snapshot.
type FileSnapshotter struct {
	// Path is the snapshot file location.
	Path string
}

// NewFileSnapshotter creates a snapshotter writing to
// <baseDir>/conversations.json. The directory is created if missing.
func NewFileSnapshotter(baseDir string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSnapshotter{Path: filepath.Join(baseDir, SnapshotFileName)}, nil
}

// Save writes the snapshot, replacing any previous one.
func (f *FileSnapshotter) Save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := util.AtomicWriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the most recent snapshot. A missing file is "absent"
// (ok=false, nil error); an unreadable or unparsable file is also
// "absent" but carries an error describing the problem for logging.
func (f *FileSnapshotter) Load() (*Snapshot, bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, true, nil
}
