// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/jaisu-tui/internal/util"
)

// DefaultTitle is the placeholder title a conversation carries until the
// first user message arrives.
const DefaultTitle = "New Chat"

// TitleMaxLen is the maximum title length in runes. The title is derived
// once from the first user message and truncated to this length.
const TitleMaxLen = 30

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds an ordered, titled thread of messages.
//
// Messages are append-only and never reordered. The last message may grow
// while an assistant reply streams in; everything before it is immutable.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewConversation creates an empty conversation with a generated ID and
// the placeholder title.
func NewConversation() *Conversation {
	return &Conversation{
		ID:          newConversationID(),
		Title:       DefaultTitle,
		Messages:    make([]Message, 0),
		LastUpdated: time.Now(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the conversation and bumps LastUpdated.
//
// If this is the first message ever appended and it was authored by the
// user, the conversation title is derived from its content. The title is
// set exactly once; later appends never change it.
func (c *Conversation) Append(msg Message) {
	if len(c.Messages) == 0 && msg.Role == RoleUser {
		c.Title = DeriveTitle(msg.Content)
	}
	c.Messages = append(c.Messages, msg)
	c.LastUpdated = time.Now()
}

// LastMessage returns the most recent message, or false if the
// conversation is empty.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// ReplaceLastContent overwrites the content of the last message and bumps
// LastUpdated. Returns false if the conversation is empty.
//
// This is the streaming growth path: the controller calls it with the
// cumulative reply text, so observers only ever see the content grow.
func (c *Conversation) ReplaceLastContent(content string) bool {
	if len(c.Messages) == 0 {
		return false
	}
	c.Messages[len(c.Messages)-1].Content = content
	c.LastUpdated = time.Now()
	return true
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:          c.ID,
		Title:       c.Title,
		LastUpdated: c.LastUpdated,
		Messages:    make([]Message, len(c.Messages)),
	}
	copy(clone.Messages, c.Messages)
	return clone
}

// Preview returns a short preview of the first user message, or the empty
// string if there is none.
func (c *Conversation) Preview(maxLen int) string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(maxLen)
		}
	}
	return ""
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle builds a conversation title from the first user message.
// Newlines collapse to spaces and the result is rune-truncated to
// TitleMaxLen, matching what the sidebar can display.
func DeriveTitle(content string) string {
	title := strings.ReplaceAll(content, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")
	title = util.TruncateRunesNoEllipsis(title, TitleMaxLen)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newConversationID creates a unique conversation ID.
func newConversationID() string {
	return "conv_" + uuid.New().String()
}
