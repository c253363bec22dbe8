// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the jaisu TUI.
//
// It contains the atomic file writer used by snapshot persistence and
// rune-aware string truncation used across the UI and data model.
package util
