// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides the client boundary to the chat completion service.
package completion

import (
	"context"
	"io"
)

// =============================================================================
// COMPLETION BOUNDARY
// =============================================================================

// Turn is one role/content pair of conversation history sent to the
// completion service.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options selects the model and the delivery mode for one completion.
type Options struct {
	// Model names the completion model. Empty selects the client default.
	Model string

	// Stream requests the reply as a fragment stream instead of one string.
	Stream bool
}

// FragmentStream is a lazy, finite, non-restartable sequence of reply
// fragments. Next returns io.EOF once the stream is exhausted; any other
// error means the stream failed mid-way and no further fragments follow.
// Close must be called exactly once when the caller is done, exhausted
// or not.
type FragmentStream interface {
	Next() (string, error)
	Close() error
}

// Reply is the assistant's answer: either the complete text, or a
// fragment stream when streaming was requested and granted.
type Reply struct {
	Text   string
	Stream FragmentStream
}

// Streaming reports whether the reply arrives as a fragment stream.
func (r *Reply) Streaming() bool {
	return r != nil && r.Stream != nil
}

// Completer produces assistant replies from ordered conversation history.
// Implementations must honor ctx for cancellation and deadlines.
type Completer interface {
	Complete(ctx context.Context, history []Turn, opts Options) (*Reply, error)
}

// Drain reads a fragment stream to exhaustion and returns the
// concatenated text. Mainly useful in tests and non-interactive callers.
func Drain(stream FragmentStream) (string, error) {
	defer stream.Close()

	var text string
	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			return text, nil
		}
		if err != nil {
			return text, err
		}
		text += fragment
	}
}
