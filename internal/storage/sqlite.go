// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// sqliteSchema creates the snapshot tables. Message and conversation
// order is kept explicit in a position column so the append-only
// ordering survives the round trip.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversations (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	last_updated INTEGER NOT NULL,
	position     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	id              TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	timestamp       INTEGER NOT NULL,
	position        INTEGER NOT NULL,
	PRIMARY KEY (conversation_id, id)
);
`

// =============================================================================
// SQLITE SNAPSHOTTER
// =============================================================================

// SQLiteSnapshotter persists session snapshots in a SQLite database.
// Each Save replaces the stored snapshot in a single transaction, so
// readers never observe a half-written session.
//
// Timestamps are stored as Unix nanoseconds and reconstructed with
// time.Unix, which round-trips exactly under time.Time.Equal.
type SQLiteSnapshotter struct {
	db *sql.DB
}

// OpenSQLiteSnapshotter opens (creating if needed) the snapshot database
// at the given path.
func OpenSQLiteSnapshotter(path string) (*SQLiteSnapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// WAL keeps write-through persistence cheap; foreign keys enforce the
	// conversation/message relationship.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteSnapshotter{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSnapshotter) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with snap in one transaction.
func (s *SQLiteSnapshotter) Save(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear conversations: %w", err)
	}

	for pos, conv := range snap.Conversations {
		if _, err := tx.Exec(
			"INSERT INTO conversations (id, title, last_updated, position) VALUES (?, ?, ?, ?)",
			conv.ID, conv.Title, conv.LastUpdated.UnixNano(), pos,
		); err != nil {
			return fmt.Errorf("failed to insert conversation: %w", err)
		}

		for mpos, msg := range conv.Messages {
			if _, err := tx.Exec(
				"INSERT INTO messages (conversation_id, id, role, content, timestamp, position) VALUES (?, ?, ?, ?, ?, ?)",
				conv.ID, msg.ID, string(msg.Role), msg.Content, msg.Timestamp.UnixNano(), mpos,
			); err != nil {
				return fmt.Errorf("failed to insert message: %w", err)
			}
		}
	}

	for key, value := range map[string]string{
		"schema_version": fmt.Sprintf("%d", snap.SchemaVersion),
		"active_id":      snap.ActiveID,
	} {
		if _, err := tx.Exec(
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		); err != nil {
			return fmt.Errorf("failed to store meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load retrieves the stored snapshot. A database without a saved session
// reports absent (ok=false, nil error).
func (s *SQLiteSnapshotter) Load() (*Snapshot, bool, error) {
	var versionStr string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&versionStr)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot meta: %w", err)
	}

	snap := &Snapshot{Conversations: make([]*model.Conversation, 0)}
	if _, err := fmt.Sscanf(versionStr, "%d", &snap.SchemaVersion); err != nil {
		return nil, false, fmt.Errorf("failed to parse schema version %q: %w", versionStr, err)
	}
	if err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'active_id'").Scan(&snap.ActiveID); err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to read active id: %w", err)
	}

	rows, err := s.db.Query("SELECT id, title, last_updated FROM conversations ORDER BY position")
	if err != nil {
		return nil, false, fmt.Errorf("failed to read conversations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		conv := &model.Conversation{Messages: make([]model.Message, 0)}
		var lastUpdated int64
		if err := rows.Scan(&conv.ID, &conv.Title, &lastUpdated); err != nil {
			return nil, false, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.LastUpdated = time.Unix(0, lastUpdated)
		snap.Conversations = append(snap.Conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	for _, conv := range snap.Conversations {
		if err := s.loadMessages(conv); err != nil {
			return nil, false, err
		}
	}

	return snap, true, nil
}

// loadMessages fills a conversation's message list in stored order.
func (s *SQLiteSnapshotter) loadMessages(conv *model.Conversation) error {
	rows, err := s.db.Query(
		"SELECT id, role, content, timestamp FROM messages WHERE conversation_id = ? ORDER BY position",
		conv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role string
		var ts int64
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts); err != nil {
			return fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.Unix(0, ts)
		conv.Messages = append(conv.Messages, msg)
	}
	return rows.Err()
}
