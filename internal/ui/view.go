// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/jaisu-tui/internal/model"
)

// sidebarWidth is the fixed width of the conversation list pane.
const sidebarWidth = 28

// =============================================================================
// VIEW
// =============================================================================

// View renders the full frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(),
		m.viewport.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderInputLine(),
		m.renderStatusBar(),
	)
}

// renderSidebar renders the conversation list, newest first.
func (m Model) renderSidebar() string {
	sess := m.store.Session()

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	for i, conv := range sess.Conversations {
		title := runewidth.Truncate(conv.Title, sidebarWidth-4, "…")
		line := "  " + title
		switch {
		case conv.ID == sess.ActiveID:
			line = m.theme.SidebarActive.Render("> " + title)
		case m.focus == focusSidebar && i == m.sidebarIndex:
			line = m.theme.SidebarActive.Render("  " + title)
		default:
			line = m.theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(m.viewport.Height).
		Render(b.String())
}

// renderInputLine renders the prompt line, replaced by the spinner
// while a send is in flight.
func (m Model) renderInputLine() string {
	if m.sending {
		return m.theme.Spinner.Render(m.spinner.View() + " thinking...")
	}
	return m.input.View()
}

// renderStatusBar renders model name, controller state and key hints.
func (m Model) renderStatusBar() string {
	if m.statusErr != "" {
		return m.theme.ErrorText.Render("error: " + m.statusErr)
	}

	parts := []string{
		m.modelName,
		m.controller.State().String(),
		"tab: switch pane",
		"ctrl+n: new chat",
		"ctrl+c: quit",
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  |  "))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the active
// conversation and scrolls to the bottom.
func (m *Model) refreshTranscript() {
	sess := m.store.Session()
	conv := sess.Active()
	if conv == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 && !m.compact {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg model.Message) string {
	label := m.theme.UserLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleAssistant {
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	}
	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04:05"))
	}

	content := msg.Content
	if msg.Role == model.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	return label + "\n" + content
}
