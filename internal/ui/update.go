// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StoreChangedMsg:
		m.syncSidebarIndex()
		m.refreshTranscript()
		return m, nil

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			m.statusErr = msg.err.Error()
		}
		m.syncSidebarIndex()
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKey routes key presses by focus area.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case "ctrl+n":
		m.store.NewConversation()
		m.sidebarIndex = 0
		m.statusErr = ""
		m.refreshTranscript()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.store.Session().Conversations)

	switch msg.String() {
	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case "down", "j":
		if m.sidebarIndex < count-1 {
			m.sidebarIndex++
		}
	case "enter":
		sess := m.store.Session()
		if m.sidebarIndex < len(sess.Conversations) {
			if err := m.store.Select(sess.Conversations[m.sidebarIndex].ID); err != nil {
				m.statusErr = err.Error()
			} else {
				m.statusErr = ""
			}
		}
		m.focus = focusInput
		m.input.Focus()
		m.refreshTranscript()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.sending {
			return m, nil
		}
		m.sending = true
		m.statusErr = ""
		m.input.Reset()
		return m, tea.Batch(
			sendCmd(m.controller, m.store.ActiveID(), text, m.requestTimeout),
			m.spinner.Tick,
		)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout resizes components and rebuilds the markdown renderer for the
// new wrap width.
func (m *Model) layout() {
	contentWidth := m.width - sidebarWidth - 3
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - 4
	if contentHeight < 5 {
		contentHeight = 5
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.input.Width = contentWidth - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contentWidth),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// syncSidebarIndex clamps the selection to the conversation it points
// at after the list changes.
func (m *Model) syncSidebarIndex() {
	sess := m.store.Session()
	active := sess.ActiveID
	for i, conv := range sess.Conversations {
		if conv.ID == active {
			m.sidebarIndex = i
			return
		}
	}
	m.sidebarIndex = 0
}
