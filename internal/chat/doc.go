// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversation turns against the completion boundary.
//
// The Controller owns the request/response cycle for one turn at a time:
// it appends the user message to the session store, hands the full
// ordered history to the completion boundary, and lands the reply,
// single-shot or streamed, back in the store. While a turn is in flight
// any further Send is rejected with ErrBusy.
//
// # Failure Policy
//
// Once the user message is in the store it stays there. Any failure
// after that point, unreachable service, malformed payload, a stream
// dying mid-way, ends the turn with exactly one synthetic assistant
// reply and returns the controller to idle. Callers only see an error
// for their own mistakes: empty input, a busy controller, or an unknown
// conversation ID.
//
// # Streaming
//
// A streamed reply grows a single assistant message: the first fragment
// creates it, every later fragment replaces its content with the
// cumulative text. Observers see monotonically growing content, never a
// shrink or a second message. The growing message is addressed by its
// ID, tracked on the controller's in-flight state.
package chat
