// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates conversation turns against the completion boundary.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/jaisu-tui/internal/completion"
	"github.com/jeranaias/jaisu-tui/internal/model"
	"github.com/jeranaias/jaisu-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned when the message text is empty after
	// trimming whitespace.
	ErrEmptyInput = errors.New("message text is empty")

	// ErrBusy is returned when a send is already in flight. The UI
	// disables input while a turn runs, so hitting this means a caller
	// bypassed that guard.
	ErrBusy = errors.New("a send is already in flight")
)

// ErrorReplyText is the assistant-authored reply appended when a turn
// fails at the completion boundary. The user always sees a
// conversational response, success or failure.
const ErrorReplyText = "Sorry, something went wrong while generating a reply. Please try again."

// =============================================================================
// STATE
// =============================================================================

// State is the controller's position in the current turn.
type State int

const (
	// StateIdle means no send is in flight.
	StateIdle State = iota

	// StateSending means the user message is being appended.
	StateSending

	// StateAwaitingReply means the request is at the completion boundary.
	StateAwaitingReply

	// StateStreaming means reply fragments are arriving.
	StateStreaming
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingReply:
		return "awaiting_reply"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs one conversation turn at a time: append the user
// message, call the completion boundary with the full ordered history,
// and land the assistant reply in the store. A second Send while a turn
// is in flight is rejected with ErrBusy.
//
// Every failure past the user-message append is converted into a single
// synthetic assistant reply; the user message is never rolled back.
type Controller struct {
	mu    sync.Mutex
	state State

	// streamingMessageID identifies the assistant message growing under
	// the current stream. Zero when no stream is active.
	streamingMessageID string

	store     *storage.SessionStore
	completer completion.Completer
	logger    *slog.Logger

	model  string
	stream bool
}

// Config holds configuration for the controller.
type Config struct {
	// Model names the completion model. Empty selects the client default.
	Model string

	// Stream requests streamed replies.
	Stream bool
}

// NewController creates a controller over the given store and
// completion boundary.
func NewController(store *storage.SessionStore, completer completion.Completer, cfg Config) *Controller {
	return &Controller{
		state:     StateIdle,
		store:     store,
		completer: completer,
		logger:    slog.Default(),
		model:     cfg.Model,
		stream:    cfg.Stream,
	}
}

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if logger != nil {
		c.logger = logger
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StreamingMessageID returns the ID of the assistant message currently
// growing under a stream, or "" when no stream is active.
func (c *Controller) StreamingMessageID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamingMessageID
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one full conversation turn and returns the ID of the
// conversation it landed in. An empty conversationID asks the store for
// a fresh conversation first.
//
// Completion-boundary failures do not surface as errors: the turn ends
// with a synthetic assistant reply and Send returns normally. The
// returned error covers caller mistakes only (empty input, a turn
// already in flight, an unknown conversation ID).
//
// ctx bounds the boundary call; a deadline expiring mid-turn follows
// the same failure path as any other boundary error.
func (c *Controller) Send(ctx context.Context, conversationID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.state = StateSending
	c.mu.Unlock()
	defer c.finishTurn()

	if conversationID == "" {
		conversationID = c.store.NewConversation()
	}

	if err := c.store.AppendMessage(conversationID, model.NewUserMessage(text)); err != nil {
		return "", err
	}

	history, err := c.store.History(conversationID)
	if err != nil {
		return "", err
	}

	c.setState(StateAwaitingReply)

	reply, err := c.completer.Complete(ctx, historyTurns(history), completion.Options{
		Model:  c.model,
		Stream: c.stream,
	})
	if err != nil {
		c.logger.Warn("completion request failed", "conversation", conversationID, "error", err)
		c.appendErrorReply(conversationID)
		return conversationID, nil
	}

	if reply.Streaming() {
		c.consumeStream(conversationID, reply.Stream)
		return conversationID, nil
	}

	if err := c.store.AppendMessage(conversationID, model.NewAssistantMessage(reply.Text)); err != nil {
		c.logger.Warn("failed to append assistant reply", "conversation", conversationID, "error", err)
	}
	return conversationID, nil
}

// consumeStream reads reply fragments and grows a single assistant
// message with the cumulative text. A mid-stream failure appends the
// error reply text onto whatever already arrived, so the turn still
// ends with exactly one assistant message.
func (c *Controller) consumeStream(conversationID string, stream completion.FragmentStream) {
	defer stream.Close()

	var total strings.Builder
	messageID := ""

	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.logger.Warn("completion stream failed", "conversation", conversationID, "error", err)
			if messageID == "" {
				c.appendErrorReply(conversationID)
				return
			}
			total.WriteString("\n\n")
			total.WriteString(ErrorReplyText)
			if err := c.store.ReplaceMessageContent(conversationID, messageID, total.String()); err != nil {
				c.logger.Warn("failed to record stream failure", "conversation", conversationID, "error", err)
			}
			return
		}
		if fragment == "" {
			continue
		}

		total.WriteString(fragment)
		if messageID == "" {
			msg := model.NewAssistantMessage(total.String())
			messageID = msg.ID
			c.setStreaming(messageID)
			if err := c.store.AppendMessage(conversationID, msg); err != nil {
				c.logger.Warn("failed to append streaming reply", "conversation", conversationID, "error", err)
				return
			}
			continue
		}
		if err := c.store.ReplaceMessageContent(conversationID, messageID, total.String()); err != nil {
			c.logger.Warn("failed to grow streaming reply", "conversation", conversationID, "error", err)
			return
		}
	}

	if messageID == "" {
		// The service closed the stream without producing any text.
		// Treat it like any other boundary failure.
		c.appendErrorReply(conversationID)
	}
}

// appendErrorReply lands the synthetic assistant reply for a failed turn.
func (c *Controller) appendErrorReply(conversationID string) {
	if err := c.store.AppendMessage(conversationID, model.NewAssistantMessage(ErrorReplyText)); err != nil {
		c.logger.Warn("failed to append error reply", "conversation", conversationID, "error", err)
	}
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Controller) setStreaming(messageID string) {
	c.mu.Lock()
	c.state = StateStreaming
	c.streamingMessageID = messageID
	c.mu.Unlock()
}

// finishTurn returns the controller to idle so the next Send can run.
func (c *Controller) finishTurn() {
	c.mu.Lock()
	c.state = StateIdle
	c.streamingMessageID = ""
	c.mu.Unlock()
}

// historyTurns converts stored messages into boundary turns, preserving
// order so multi-turn context survives.
func historyTurns(messages []model.Message) []completion.Turn {
	turns := make([]completion.Turn, len(messages))
	for i, msg := range messages {
		turns[i] = completion.Turn{Role: msg.Role.String(), Content: msg.Content}
	}
	return turns
}
