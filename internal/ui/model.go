// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/jaisu-tui/internal/chat"
	"github.com/jeranaias/jaisu-tui/internal/storage"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea is the pane receiving keyboard input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// =============================================================================
// UI MODEL
// =============================================================================

// Options configures the UI model.
type Options struct {
	// Theme is the color scheme: "dark" or "light"
	Theme string

	// ModelName is shown in the status bar
	ModelName string

	// ShowTimestamps shows message timestamps in the transcript
	ShowTimestamps bool

	// CompactMode reduces blank lines between messages
	CompactMode bool

	// RequestTimeout bounds each send at the completion boundary. Zero
	// leaves sends unbounded.
	RequestTimeout time.Duration
}

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	store      *storage.SessionStore
	controller *chat.Controller
	theme      *Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Focus and sidebar selection
	focus        focusArea
	sidebarIndex int

	// Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering for assistant messages. nil falls back to
	// plain text.
	renderer *glamour.TermRenderer

	// In-flight send
	sending        bool
	requestTimeout time.Duration

	modelName      string
	showTimestamps bool
	compact        bool
	statusErr      string
}

// New creates the conversation view over the given store and controller.
func New(store *storage.SessionStore, controller *chat.Controller, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		store:          store,
		controller:     controller,
		theme:          NewTheme(opts.Theme),
		focus:          focusInput,
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		modelName:      opts.ModelName,
		showTimestamps: opts.ShowTimestamps,
		compact:        opts.CompactMode,
		requestTimeout: opts.RequestTimeout,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}
