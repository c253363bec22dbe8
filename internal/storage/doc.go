// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
//
// The SessionStore owns the durable conversation set and the active
// selection. Every mutating operation writes the whole session through a
// pluggable Snapshotter boundary and notifies subscribers; persistence
// failures are logged but never surfaced, so the in-memory session stays
// authoritative.
//
// # Key Types
//
//   - SessionStore: Single source of truth for conversations and selection
//   - Snapshotter: Persistence boundary (file or SQLite backed)
//   - Snapshot: Versioned serialized session
//
// # Usage
//
// Create a store against the file backend:
//
//	snap, err := storage.NewFileSnapshotter(dataDir)
//	store := storage.NewSessionStore(snap)
//	store.Initialize()
//
// Mutate through its operations:
//
//	id := store.NewConversation()
//	err = store.AppendMessage(id, model.NewUserMessage("Hello"))
//
// # Storage Location
//
// The file backend keeps the whole session in a single
// conversations.json, written atomically; the SQLite backend keeps it in
// conversations.db with one transaction per write.
package storage
