// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"fmt"

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// SchemaVersion is the current snapshot schema version. Snapshots written
// before versioning was introduced carry version 0 and are migrated on
// load; snapshots from a newer schema are rejected.
const SchemaVersion = 2

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the serialized form of a session: the ordered conversation
// list and the active selection. It round-trips every field of every
// conversation and message.
type Snapshot struct {
	SchemaVersion int                   `json:"schema_version"`
	ActiveID      string                `json:"active_id"`
	Conversations []*model.Conversation `json:"conversations"`
}

// NewSnapshot captures a session into a snapshot at the current schema
// version. The session is deep-copied so later mutations do not leak into
// an in-flight persistence write.
func NewSnapshot(sess *model.Session) *Snapshot {
	clone := sess.Clone()
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		ActiveID:      clone.ActiveID,
		Conversations: clone.Conversations,
	}
}

// Session rebuilds a session from the snapshot.
func (s *Snapshot) Session() *model.Session {
	sess := &model.Session{
		ActiveID:      s.ActiveID,
		Conversations: s.Conversations,
	}
	if sess.Conversations == nil {
		sess.Conversations = make([]*model.Conversation, 0)
	}
	return sess
}

// Migrate upgrades an older snapshot to the current schema in place.
// Version 0 predates schema tagging; its layout is otherwise identical,
// so migration only stamps the version. Snapshots written by a newer
// schema are refused rather than guessed at.
func (s *Snapshot) Migrate() error {
	switch {
	case s.SchemaVersion == SchemaVersion:
		return nil
	case s.SchemaVersion < SchemaVersion:
		s.SchemaVersion = SchemaVersion
		return nil
	default:
		return fmt.Errorf("snapshot schema version %d is newer than supported version %d", s.SchemaVersion, SchemaVersion)
	}
}

// =============================================================================
// PERSISTENCE BOUNDARY
// =============================================================================

// Snapshotter is the persistence boundary for session snapshots.
//
// Load reports ok=false when no usable snapshot exists. Implementations
// must treat absent or corrupt data as "absent" rather than failing hard:
// a corrupt snapshot yields (nil, false, err) where err only describes
// what was wrong for logging. The store degrades to a fresh session in
// every not-ok case.
type Snapshotter interface {
	// Save persists a snapshot, replacing any previous one.
	Save(snap *Snapshot) error

	// Load retrieves the most recent snapshot.
	Load() (snap *Snapshot, ok bool, err error)
}
