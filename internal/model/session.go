// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is the full conversation state owned by one session store:
// the ordered conversation set (newest-first for display) and the
// currently selected conversation.
//
// ActiveID is empty when nothing is selected. When non-empty it always
// refers to a conversation present in Conversations; the store enforces
// that invariant on every mutation.
type Session struct {
	Conversations []*Conversation `json:"conversations"`
	ActiveID      string          `json:"active_id"`
}

// NewSession creates an empty session with nothing selected.
func NewSession() *Session {
	return &Session{
		Conversations: make([]*Conversation, 0),
	}
}

// Find returns the conversation with the given ID, or nil.
func (s *Session) Find(id string) *Conversation {
	for _, conv := range s.Conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// Active returns the currently selected conversation, or nil when no
// conversation is selected.
func (s *Session) Active() *Conversation {
	if s.ActiveID == "" {
		return nil
	}
	return s.Find(s.ActiveID)
}

// InsertFront places a conversation at the front of the ordered set,
// keeping newest-first display order.
func (s *Session) InsertFront(conv *Conversation) {
	s.Conversations = append([]*Conversation{conv}, s.Conversations...)
}

// Clone creates a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := &Session{
		ActiveID:      s.ActiveID,
		Conversations: make([]*Conversation, len(s.Conversations)),
	}
	for i, conv := range s.Conversations {
		clone.Conversations[i] = conv.Clone()
	}
	return clone
}
