// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore is the single source of truth for the conversation set and
// the active selection. All mutation goes through its methods; every
// successful mutation is written through to the persistence boundary and
// announced to subscribers.
//
// Persistence failures are logged and never surfaced to callers: the
// in-memory state stays authoritative for the process lifetime, so a
// crash can lose at most the most recent mutation.
//
// The store is safe for concurrent use.
type SessionStore struct {
	mu      sync.Mutex
	session *model.Session
	snap    Snapshotter
	logger  *slog.Logger

	subscribers []func()
}

// NewSessionStore creates a store backed by the given snapshotter.
// Call Initialize before using it.
func NewSessionStore(snap Snapshotter) *SessionStore {
	return &SessionStore{
		session: model.NewSession(),
		snap:    snap,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the store's logger.
func (s *SessionStore) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Initialize loads the persisted session, if any. Absent, corrupt, or
// unreadable snapshots degrade to a fresh session containing exactly one
// empty conversation, which becomes active. Initialize never fails;
// load problems are logged as warnings.
func (s *SessionStore) Initialize() {
	s.mu.Lock()

	// A snapshot written by a newer app version is refused, and the
	// initial persist is skipped so the newer data stays on disk until
	// the user actually mutates the fresh session.
	refusedNewer := false

	snap, ok, err := s.snap.Load()
	if err != nil {
		s.logger.Warn("failed to load session snapshot, starting fresh", "error", err)
	}
	if ok {
		if err := snap.Migrate(); err != nil {
			s.logger.Warn("cannot migrate session snapshot, starting fresh", "error", err)
			ok = false
			refusedNewer = true
		}
	}

	if ok {
		s.session = snap.Session()
		s.repairActiveLocked()
	}

	if len(s.session.Conversations) == 0 {
		conv := model.NewConversation()
		s.session.InsertFront(conv)
		s.session.ActiveID = conv.ID
	}

	if !refusedNewer {
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// repairActiveLocked drops a dangling active selection so the invariant
// "ActiveID, if set, refers to a present conversation" holds after load.
func (s *SessionStore) repairActiveLocked() {
	if s.session.ActiveID != "" && s.session.Find(s.session.ActiveID) == nil {
		s.logger.Warn("active conversation missing from snapshot, clearing selection",
			"active_id", s.session.ActiveID)
		s.session.ActiveID = ""
	}
	if s.session.ActiveID == "" && len(s.session.Conversations) > 0 {
		s.session.ActiveID = s.session.Conversations[0].ID
	}
}

// =============================================================================
// MUTATING OPERATIONS
// =============================================================================

// NewConversation inserts a new empty conversation at the front of the
// ordered set, makes it active, and returns its ID.
func (s *SessionStore) NewConversation() string {
	s.mu.Lock()
	conv := model.NewConversation()
	s.session.InsertFront(conv)
	s.session.ActiveID = conv.ID
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return conv.ID
}

// Select makes the named conversation active. Returns
// ErrConversationNotFound if the ID is not present; the selection is
// unchanged in that case.
func (s *SessionStore) Select(id string) error {
	s.mu.Lock()
	if s.session.Find(id) == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	s.session.ActiveID = id
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// AppendMessage appends a message to the named conversation. The first
// message ever appended to an empty conversation derives its title when
// authored by the user. Returns ErrConversationNotFound for unknown IDs.
func (s *SessionStore) AppendMessage(conversationID string, msg model.Message) error {
	s.mu.Lock()
	conv := s.session.Find(conversationID)
	if conv == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	conv.Append(msg)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// ReplaceLastContent overwrites the content of the last message in the
// named conversation. This is the streaming growth path: the controller
// calls it with the cumulative reply text on every fragment.
func (s *SessionStore) ReplaceLastContent(conversationID, content string) error {
	s.mu.Lock()
	conv := s.session.Find(conversationID)
	if conv == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	if !conv.ReplaceLastContent(content) {
		s.mu.Unlock()
		return ErrEmptyConversation
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// ReplaceMessageContent overwrites the content of the identified message.
// Addressing by message ID instead of position keeps a streaming update
// from landing on the wrong message if the tail of the conversation ever
// changes under the writer. Returns ErrConversationNotFound for unknown
// conversation IDs and ErrMessageNotFound for unknown message IDs.
func (s *SessionStore) ReplaceMessageContent(conversationID, messageID, content string) error {
	s.mu.Lock()
	conv := s.session.Find(conversationID)
	if conv == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	replaced := false
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].ID == messageID {
			conv.Messages[i].Content = content
			conv.LastUpdated = time.Now()
			replaced = true
			break
		}
	}
	if !replaced {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// ActiveID returns the ID of the selected conversation, or "" when
// nothing is selected.
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ActiveID
}

// Session returns a deep copy of the current session for readers.
// Mutating the copy has no effect on the store.
func (s *SessionStore) Session() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Conversation returns a deep copy of the named conversation.
func (s *SessionStore) Conversation(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.session.Find(id)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// History returns the ordered message history of the named conversation.
// The slice is a copy; callers may not mutate conversation state with it.
func (s *SessionStore) History(conversationID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.session.Find(conversationID)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	history := make([]model.Message, len(conv.Messages))
	copy(history, conv.Messages)
	return history, nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers a callback invoked after every successful mutation.
// Callbacks run outside the store lock; they may call back into the
// store's read operations but should return quickly.
func (s *SessionStore) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// notify invokes subscriber callbacks outside the lock.
func (s *SessionStore) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the session through to the snapshot boundary.
// Failures are logged, never propagated: the in-memory session remains
// authoritative.
func (s *SessionStore) persistLocked() {
	if s.snap == nil {
		return
	}
	if err := s.snap.Save(NewSnapshot(s.session)); err != nil {
		s.logger.Warn("failed to persist session snapshot", "error", err)
	}
}

// Persist writes the current session to the snapshotter. Every mutation
// already persists on its own; this exists for explicit flush points
// such as shutdown. Failures are logged, never returned.
func (s *SessionStore) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}
