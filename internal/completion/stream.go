// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides the client boundary to the chat completion service.
package completion

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// =============================================================================
// STREAM READER
// =============================================================================

// streamReader parses an NDJSON streaming response body into a
// FragmentStream. Each line carries one chatResponse; the line with
// done=true ends the stream.
type streamReader struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

// newStreamReader wraps a streaming response body.
func newStreamReader(body io.ReadCloser) *streamReader {
	return &streamReader{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next returns the next non-empty fragment, io.EOF on exhaustion, or a
// ClientError if the stream turns malformed or reports a service error.
func (s *streamReader) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			// A stream that ends without a done marker still exhausts
			// cleanly; the transport closing is the terminal event.
			s.done = true
			if err == io.EOF {
				return "", io.EOF
			}
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "stream read failed", Cause: err}
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var response chatResponse
		if err := json.Unmarshal(line, &response); err != nil {
			s.done = true
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed stream chunk", Cause: err}
		}
		if response.Error != "" {
			s.done = true
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "completion service error: " + response.Error}
		}

		if response.Done {
			s.done = true
			if response.Message.Content != "" {
				return response.Message.Content, nil
			}
			return "", io.EOF
		}
		if response.Message.Content != "" {
			return response.Message.Content, nil
		}
		// Keep-alive chunk with no content; read the next line.
	}
}

// Close releases the underlying response body. Safe to call after
// exhaustion.
func (s *streamReader) Close() error {
	s.done = true
	return s.body.Close()
}
