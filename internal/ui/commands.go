// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/jaisu-tui/internal/chat"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StoreChangedMsg signals that the session store mutated. main wires the
// store's subscription to the running program so streaming growth and
// writes from other code paths re-render the view.
type StoreChangedMsg struct{}

// sendDoneMsg carries the outcome of a completed send command.
type sendDoneMsg struct {
	conversationID string
	err            error
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd runs one conversation turn off the UI goroutine. Boundary
// failures surface inside the conversation itself; the returned error
// covers caller mistakes only. A positive timeout bounds the whole
// turn, streaming included, since the stream client itself has none.
func sendCmd(controller *chat.Controller, conversationID, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		id, err := controller.Send(ctx, conversationID, text)
		return sendDoneMsg{conversationID: id, err: err}
	}
}
