// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
//
// The view is a single Bubble Tea model with three areas: a
// conversation sidebar (newest first), a transcript viewport, and an
// input line. Sends run as commands off the UI goroutine; the session
// store's change notifications arrive as StoreChangedMsg so streaming
// replies grow on screen as fragments land.
//
// Assistant messages render through glamour when a renderer is
// available, falling back to plain text otherwise.
package ui
