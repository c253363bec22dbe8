// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal front end for jaisu.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the chat view.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Sidebar       lipgloss.Style
	SidebarTitle  lipgloss.Style
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style

	// Transcript
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style

	// Chrome
	InputPrompt lipgloss.Style
	StatusBar   lipgloss.Style
	Spinner     lipgloss.Style
	ErrorText   lipgloss.Style
}

// NewTheme builds a theme for the named scheme ("dark" or "light"),
// detecting the terminal's color capability.
func NewTheme(name string) *Theme {
	output := termenv.DefaultOutput()
	isDark := name != "light"

	accent := lipgloss.Color("99")
	dim := lipgloss.Color("240")
	if !isDark {
		accent = lipgloss.Color("55")
		dim = lipgloss.Color("245")
	}

	return &Theme{
		IsDark:       isDark,
		ColorProfile: output.Profile,

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(dim).
			PaddingRight(1),
		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		SidebarItem: lipgloss.NewStyle().
			Foreground(dim),
		SidebarActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Timestamp: lipgloss.NewStyle().
			Foreground(dim),

		InputPrompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		StatusBar: lipgloss.NewStyle().
			Foreground(dim),
		Spinner: lipgloss.NewStyle().
			Foreground(accent),
		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}
