// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides the client boundary to the chat completion service.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the completion client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeBadStatus
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "completion service unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "completion request timed out"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the completion client.
type ClientConfig struct {
	// BaseURL is the completion API base URL (default: http://127.0.0.1:11434)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// DefaultModel to use when a request does not name one
	DefaultModel string

	// RequestsPerSecond paces outgoing requests (default: 5)
	RequestsPerSecond float64

	// Burst is the pacing burst size (default: 5)
	Burst int
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:11434",
		Timeout:           30 * time.Second,
		DefaultModel:      "qwen2.5:7b",
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the completion service over HTTP. It implements
// Completer and normalizes every failure mode (network error, non-2xx
// status, malformed payload) into a typed ClientError.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// streamClient has no overall timeout; streamed replies can outlive
	// any fixed request budget and are bounded by the caller's context.
	streamClient *http.Client

	limiter *rate.Limiter
}

// NewClient creates a completion client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a completion client with custom
// configuration, filling in defaults for any zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DefaultModel == "" {
		config.DefaultModel = "qwen2.5:7b"
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 5
	}
	if config.Burst == 0 {
		config.Burst = 5
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
		limiter:      rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
	}
}

// =============================================================================
// WIRE FORMAT
// =============================================================================

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []Turn `json:"messages"`
	Stream   bool   `json:"stream"`
}

// chatResponse is one response object: the whole reply for non-streaming
// requests, or one line of the NDJSON stream.
type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// =============================================================================
// COMPLETE
// =============================================================================

// Complete sends the ordered conversation history to the completion
// service and returns the reply, streamed or single-shot per opts.
func (c *Client) Complete(ctx context.Context, history []Turn, opts Options) (*Reply, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "request pacing interrupted", Cause: err}
	}

	model := opts.Model
	if model == "" {
		model = c.config.DefaultModel
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: history,
		Stream:   opts.Stream,
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.httpClient
	if opts.Stream {
		httpClient = c.streamClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "completion service unreachable", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ClientError{
			Type:    ErrTypeBadStatus,
			Message: "unexpected status from completion service: " + resp.Status,
		}
	}

	if opts.Stream {
		return &Reply{Stream: newStreamReader(resp.Body)}, nil
	}
	defer resp.Body.Close()
	return c.readSingle(resp.Body)
}

// readSingle decodes a non-streaming reply body.
func (c *Client) readSingle(body io.Reader) (*Reply, error) {
	var response chatResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed completion response", Cause: err}
	}
	if response.Error != "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "completion service error: " + response.Error}
	}
	return &Reply{Text: response.Message.Content}, nil
}
