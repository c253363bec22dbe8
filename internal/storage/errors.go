// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the session store and snapshot persistence.
package storage

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when an operation names a
// conversation ID that is not present in the session.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &SessionError{Message: "conversation not found"}

// ErrEmptyConversation is returned when an operation needs at least one
// message in the conversation and there is none.
var ErrEmptyConversation = &SessionError{Message: "conversation has no messages"}

// ErrMessageNotFound is returned when an operation names a message ID
// that is not present in the conversation.
var ErrMessageNotFound = &SessionError{Message: "message not found"}

// SessionError represents a session-store contract violation.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
