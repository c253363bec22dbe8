// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing the chat session, its conversations, and their messages.
//
// # Key Types
//
//   - Session: Ordered conversation set plus the active selection
//   - Conversation: Ordered, titled thread of messages
//   - Message: Single turn authored by the user or the assistant
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Create a conversation and append a turn:
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("Hello!"))
//
// The first user message appended to an empty conversation also becomes
// its title (truncated to TitleMaxLen runes).
package model
