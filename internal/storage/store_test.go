// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// =============================================================================
// TEST SNAPSHOTTER
// =============================================================================

// memorySnapshotter is an in-memory Snapshotter for store tests.
type memorySnapshotter struct {
	mu      sync.Mutex
	snap    *Snapshot
	saves   int
	saveErr error
}

func (m *memorySnapshotter) Save(snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.saves++
	return nil
}

func (m *memorySnapshotter) Load() (*Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, false, nil
	}
	return m.snap, true, nil
}

func (m *memorySnapshotter) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func newTestStore() (*SessionStore, *memorySnapshotter) {
	snap := &memorySnapshotter{}
	store := NewSessionStore(snap)
	store.Initialize()
	return store, snap
}

// =============================================================================
// INITIALIZATION TESTS
// =============================================================================

func TestInitialize_FreshSession(t *testing.T) {
	store, _ := newTestStore()

	sess := store.Session()
	if len(sess.Conversations) != 1 {
		t.Fatalf("Fresh session should have 1 conversation, got %d", len(sess.Conversations))
	}
	if !sess.Conversations[0].IsEmpty() {
		t.Error("Fresh conversation should be empty")
	}
	if sess.ActiveID != sess.Conversations[0].ID {
		t.Error("Fresh conversation should be active")
	}
}

func TestInitialize_LoadsPersistedSession(t *testing.T) {
	snap := &memorySnapshotter{}

	first := NewSessionStore(snap)
	first.Initialize()
	id := first.NewConversation()
	if err := first.AppendMessage(id, model.NewUserMessage("persist me")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	second := NewSessionStore(snap)
	second.Initialize()

	sess := second.Session()
	if len(sess.Conversations) != 2 {
		t.Fatalf("Expected 2 conversations after reload, got %d", len(sess.Conversations))
	}
	if sess.ActiveID != id {
		t.Errorf("ActiveID = %q, want %q", sess.ActiveID, id)
	}
	conv := sess.Find(id)
	if conv == nil || conv.MessageCount() != 1 {
		t.Fatal("Persisted message missing after reload")
	}
	if conv.Messages[0].Content != "persist me" {
		t.Errorf("Content = %q", conv.Messages[0].Content)
	}
}

func TestInitialize_CorruptSnapshotDegradesToFresh(t *testing.T) {
	snap := &corruptSnapshotter{}
	store := NewSessionStore(snap)
	store.Initialize()

	sess := store.Session()
	if len(sess.Conversations) != 1 {
		t.Fatalf("Corrupt snapshot should degrade to fresh session, got %d conversations", len(sess.Conversations))
	}
}

// corruptSnapshotter simulates an unparsable persisted snapshot.
type corruptSnapshotter struct{ saves int }

func (c *corruptSnapshotter) Save(*Snapshot) error { c.saves++; return nil }
func (c *corruptSnapshotter) Load() (*Snapshot, bool, error) {
	return nil, false, errors.New("unparsable snapshot")
}

func TestInitialize_NewerSchemaDegradesToFresh(t *testing.T) {
	snap := &memorySnapshotter{snap: &Snapshot{
		SchemaVersion: SchemaVersion + 1,
		Conversations: []*model.Conversation{model.NewConversation()},
	}}
	store := NewSessionStore(snap)
	store.Initialize()

	sess := store.Session()
	if len(sess.Conversations) != 1 || !sess.Conversations[0].IsEmpty() {
		t.Error("Newer-schema snapshot should be refused and replaced with a fresh session")
	}
}

func TestInitialize_NewerSchemaNotOverwritten(t *testing.T) {
	snap := &memorySnapshotter{snap: &Snapshot{
		SchemaVersion: SchemaVersion + 1,
		Conversations: []*model.Conversation{model.NewConversation()},
	}}
	store := NewSessionStore(snap)
	store.Initialize()

	// The refused snapshot must survive Initialize untouched; a newer
	// app version still owns that data.
	if snap.saveCount() != 0 {
		t.Errorf("Initialize wrote %d snapshots over a newer-schema session, want 0", snap.saveCount())
	}
	snap.mu.Lock()
	version := snap.snap.SchemaVersion
	snap.mu.Unlock()
	if version != SchemaVersion+1 {
		t.Errorf("Stored schema version = %d, want %d preserved", version, SchemaVersion+1)
	}
}

func TestInitialize_RepairsDanglingActiveID(t *testing.T) {
	conv := model.NewConversation()
	snap := &memorySnapshotter{snap: &Snapshot{
		SchemaVersion: SchemaVersion,
		ActiveID:      "conv_gone",
		Conversations: []*model.Conversation{conv},
	}}
	store := NewSessionStore(snap)
	store.Initialize()

	if store.ActiveID() != conv.ID {
		t.Errorf("Dangling ActiveID should fall back to front conversation, got %q", store.ActiveID())
	}
}

// =============================================================================
// MUTATION TESTS
// =============================================================================

func TestNewConversation_InsertsFrontAndSelects(t *testing.T) {
	store, _ := newTestStore()

	firstID := store.Session().Conversations[0].ID
	newID := store.NewConversation()

	sess := store.Session()
	if sess.Conversations[0].ID != newID {
		t.Error("New conversation should be at the front")
	}
	if sess.Conversations[1].ID != firstID {
		t.Error("Existing conversation should shift back")
	}
	if sess.ActiveID != newID {
		t.Error("New conversation should become active")
	}
}

func TestSelect(t *testing.T) {
	store, _ := newTestStore()
	firstID := store.ActiveID()
	store.NewConversation()

	if err := store.Select(firstID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if store.ActiveID() != firstID {
		t.Error("Select should change the active conversation")
	}

	if err := store.Select("conv_missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Select unknown id: got %v, want ErrConversationNotFound", err)
	}
	if store.ActiveID() != firstID {
		t.Error("Failed Select must not change the selection")
	}
}

func TestAppendMessage_TitleDerivation(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()

	long := "Hello world, this is a long message"
	if err := store.AppendMessage(id, model.NewUserMessage(long)); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	conv, err := store.Conversation(id)
	if err != nil {
		t.Fatalf("Conversation failed: %v", err)
	}
	want := string([]rune(long)[:30])
	if conv.Title != want {
		t.Errorf("Title = %q, want %q", conv.Title, want)
	}

	// Later sends never change the title.
	store.AppendMessage(id, model.NewAssistantMessage("reply"))
	store.AppendMessage(id, model.NewUserMessage("another question entirely"))
	conv, _ = store.Conversation(id)
	if conv.Title != want {
		t.Errorf("Title changed to %q after later appends", conv.Title)
	}
}

func TestAppendMessage_NotFound(t *testing.T) {
	store, _ := newTestStore()
	err := store.AppendMessage("conv_missing", model.NewUserMessage("x"))
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}
}

func TestAppendMessage_AppendOnlyGrowth(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()

	prevLen := 0
	for i := 0; i < 10; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		if err := store.AppendMessage(id, model.NewMessage(role, "turn")); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
		conv, _ := store.Conversation(id)
		if conv.MessageCount() <= prevLen {
			t.Fatalf("Message count must grow, got %d after %d", conv.MessageCount(), prevLen)
		}
		prevLen = conv.MessageCount()
	}
}

func TestReplaceLastContent(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()

	if err := store.ReplaceLastContent(id, "x"); !errors.Is(err, ErrEmptyConversation) {
		t.Errorf("got %v, want ErrEmptyConversation", err)
	}
	if err := store.ReplaceLastContent("conv_missing", "x"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}

	store.AppendMessage(id, model.NewUserMessage("question"))
	store.AppendMessage(id, model.NewAssistantMessage("Hel"))

	// Cumulative streaming growth: content only ever grows.
	for _, cumulative := range []string{"Hell", "Hello"} {
		if err := store.ReplaceLastContent(id, cumulative); err != nil {
			t.Fatalf("ReplaceLastContent failed: %v", err)
		}
	}

	conv, _ := store.Conversation(id)
	last, _ := conv.LastMessage()
	if last.Content != "Hello" {
		t.Errorf("Final content = %q, want %q", last.Content, "Hello")
	}
	if conv.MessageCount() != 2 {
		t.Errorf("Streaming must not add messages, count = %d", conv.MessageCount())
	}
}

func TestReplaceMessageContent(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()

	msg := model.NewAssistantMessage("Hel")
	store.AppendMessage(id, model.NewUserMessage("question"))
	store.AppendMessage(id, msg)

	if err := store.ReplaceMessageContent(id, msg.ID, "Hello"); err != nil {
		t.Fatalf("ReplaceMessageContent failed: %v", err)
	}

	conv, _ := store.Conversation(id)
	last, _ := conv.LastMessage()
	if last.Content != "Hello" {
		t.Errorf("content = %q, want %q", last.Content, "Hello")
	}

	if err := store.ReplaceMessageContent(id, "msg_missing", "x"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("got %v, want ErrMessageNotFound", err)
	}
	if err := store.ReplaceMessageContent("conv_missing", msg.ID, "x"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}
}

// =============================================================================
// WRITE-THROUGH AND NOTIFICATION TESTS
// =============================================================================

func TestWriteThrough_EveryMutationPersists(t *testing.T) {
	store, snap := newTestStore()
	base := snap.saveCount()

	id := store.NewConversation()
	store.AppendMessage(id, model.NewUserMessage("one"))
	store.AppendMessage(id, model.NewAssistantMessage("two"))
	store.ReplaceLastContent(id, "two!")
	store.Select(id)

	if got := snap.saveCount() - base; got != 5 {
		t.Errorf("Expected 5 persistence writes, got %d", got)
	}
}

func TestPersist_ExplicitFlush(t *testing.T) {
	store, snap := newTestStore()
	base := snap.saveCount()

	store.Persist()

	if got := snap.saveCount() - base; got != 1 {
		t.Errorf("Expected 1 persistence write from explicit flush, got %d", got)
	}
}

func TestPersistenceFailure_NotPropagated(t *testing.T) {
	snap := &memorySnapshotter{}
	store := NewSessionStore(snap)
	store.Initialize()
	id := store.ActiveID()

	snap.mu.Lock()
	snap.saveErr = errors.New("disk full")
	snap.mu.Unlock()

	if err := store.AppendMessage(id, model.NewUserMessage("still works")); err != nil {
		t.Fatalf("Persistence failure must not surface, got %v", err)
	}

	// In-memory state stays authoritative.
	conv, _ := store.Conversation(id)
	if conv.MessageCount() != 1 {
		t.Error("In-memory mutation should survive persistence failure")
	}
}

func TestSubscribe_NotifiedOnMutation(t *testing.T) {
	store, _ := newTestStore()

	var notified int
	store.Subscribe(func() { notified++ })

	id := store.NewConversation()
	store.AppendMessage(id, model.NewUserMessage("ping"))

	if notified != 2 {
		t.Errorf("Expected 2 notifications, got %d", notified)
	}
}

// =============================================================================
// READ ISOLATION TESTS
// =============================================================================

func TestSession_ReturnsDeepCopy(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()
	store.AppendMessage(id, model.NewUserMessage("original"))

	sess := store.Session()
	sess.Conversations[0].Messages[0].Content = "tampered"
	sess.Conversations[0].Append(model.NewUserMessage("extra"))

	conv, _ := store.Conversation(id)
	if conv.Messages[0].Content != "original" {
		t.Error("Reader mutation leaked into the store")
	}
	if conv.MessageCount() != 1 {
		t.Error("Reader append leaked into the store")
	}
}

func TestHistory_OrderedCopy(t *testing.T) {
	store, _ := newTestStore()
	id := store.ActiveID()

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		store.AppendMessage(id, model.NewUserMessage(c))
	}

	history, err := store.History(id)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for i, c := range contents {
		if history[i].Content != c {
			t.Errorf("history[%d] = %q, want %q", i, history[i].Content, c)
		}
	}

	if _, err := store.History("conv_missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestSessionError_Is(t *testing.T) {
	err1 := &SessionError{Message: "test error"}
	err2 := &SessionError{Message: "test error"}
	err3 := &SessionError{Message: "different error"}

	if !errors.Is(err1, err2) {
		t.Error("Same message errors should match")
	}
	if errors.Is(err1, err3) {
		t.Error("Different message errors should not match")
	}
	if !strings.Contains(ErrConversationNotFound.Error(), "not found") {
		t.Error("Error text should describe the failure")
	}
}
