// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// buildSession builds a session with the given number of conversations,
// each holding the given number of messages.
func buildSession(conversations, messages int) *model.Session {
	sess := model.NewSession()
	for i := 0; i < conversations; i++ {
		conv := model.NewConversation()
		for j := 0; j < messages; j++ {
			role := model.RoleUser
			if j%2 == 1 {
				role = model.RoleAssistant
			}
			conv.Append(model.NewMessage(role, "message content"))
		}
		sess.InsertFront(conv)
	}
	if conversations > 0 {
		sess.ActiveID = sess.Conversations[0].ID
	}
	return sess
}

// assertSnapshotEqual verifies that got reproduces want exactly: id, role,
// content, timestamp for every message; id, title, lastUpdated for every
// conversation; and the active selection.
func assertSnapshotEqual(t *testing.T, want, got *Snapshot) {
	t.Helper()

	assert.Equal(t, want.ActiveID, got.ActiveID, "ActiveID")
	require.Len(t, got.Conversations, len(want.Conversations))

	for i, wc := range want.Conversations {
		gc := got.Conversations[i]
		assert.Equal(t, wc.ID, gc.ID, "conv %d: ID", i)
		assert.Equal(t, wc.Title, gc.Title, "conv %d: Title", i)
		assert.True(t, gc.LastUpdated.Equal(wc.LastUpdated), "conv %d: LastUpdated = %v, want %v", i, gc.LastUpdated, wc.LastUpdated)
		require.Len(t, gc.Messages, len(wc.Messages), "conv %d: message count", i)

		for j, wm := range wc.Messages {
			gm := gc.Messages[j]
			assert.Equal(t, wm.ID, gm.ID, "conv %d msg %d: ID", i, j)
			assert.Equal(t, wm.Role, gm.Role, "conv %d msg %d: Role", i, j)
			assert.Equal(t, wm.Content, gm.Content, "conv %d msg %d: Content", i, j)
			assert.True(t, gm.Timestamp.Equal(wm.Timestamp), "conv %d msg %d: Timestamp = %v, want %v", i, j, gm.Timestamp, wm.Timestamp)
		}
	}
}

// =============================================================================
// FILE SNAPSHOTTER TESTS
// =============================================================================

func TestFileSnapshotter_RoundTrip(t *testing.T) {
	cases := []struct {
		name                    string
		conversations, messages int
	}{
		{"empty", 0, 0},
		{"one conversation no messages", 1, 0},
		{"one conversation one message", 1, 1},
		{"many", 3, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := NewFileSnapshotter(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSnapshotter failed: %v", err)
			}

			want := NewSnapshot(buildSession(tc.conversations, tc.messages))
			if err := snap.Save(want); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got, ok, err := snap.Load()
			if err != nil || !ok {
				t.Fatalf("Load = (%v, %v), want snapshot", ok, err)
			}
			assertSnapshotEqual(t, want, got)
		})
	}
}

func TestFileSnapshotter_AbsentFile(t *testing.T) {
	snap, err := NewFileSnapshotter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSnapshotter failed: %v", err)
	}

	got, ok, err := snap.Load()
	if got != nil || ok || err != nil {
		t.Errorf("Load on missing file = (%v, %v, %v), want (nil, false, nil)", got, ok, err)
	}
}

func TestFileSnapshotter_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	snap, _ := NewFileSnapshotter(dir)
	if err := os.WriteFile(filepath.Join(dir, SnapshotFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	got, ok, err := snap.Load()
	if got != nil || ok {
		t.Error("Corrupt file must report absent, not a snapshot")
	}
	if err == nil {
		t.Error("Corrupt file should carry a describing error for logging")
	}
}

func TestFileSnapshotter_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	snap, _ := NewFileSnapshotter(dir)
	os.WriteFile(filepath.Join(dir, SnapshotFileName), nil, 0644)

	_, ok, err := snap.Load()
	if ok || err != nil {
		t.Errorf("Empty file = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestFileSnapshotter_SaveReplacesPrevious(t *testing.T) {
	snap, _ := NewFileSnapshotter(t.TempDir())

	snap.Save(NewSnapshot(buildSession(3, 2)))
	want := NewSnapshot(buildSession(1, 1))
	if err := snap.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, _ := snap.Load()
	if !ok {
		t.Fatal("Load should find the replaced snapshot")
	}
	assertSnapshotEqual(t, want, got)
}

// =============================================================================
// SCHEMA MIGRATION TESTS
// =============================================================================

func TestSnapshot_MigrateLegacyVersion(t *testing.T) {
	// Version 0 predates schema tagging; the layout is otherwise the same.
	snap := &Snapshot{
		SchemaVersion: 0,
		Conversations: []*model.Conversation{model.NewConversation()},
	}
	if err := snap.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if snap.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", snap.SchemaVersion, SchemaVersion)
	}
}

func TestSnapshot_MigrateNewerVersionRefused(t *testing.T) {
	snap := &Snapshot{SchemaVersion: SchemaVersion + 1}
	if err := snap.Migrate(); err == nil {
		t.Error("Migrate should refuse snapshots from a newer schema")
	}
}

func TestSnapshot_DeepCopiesSession(t *testing.T) {
	sess := buildSession(1, 1)
	snap := NewSnapshot(sess)

	sess.Conversations[0].Messages[0].Content = "mutated after capture"

	if snap.Conversations[0].Messages[0].Content == "mutated after capture" {
		t.Error("Snapshot must not share state with the live session")
	}
}
