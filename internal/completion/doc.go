// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides the client boundary to the chat completion service.
//
// This package implements an HTTP client for an Ollama-compatible chat
// endpoint, supporting both single-shot and streaming replies. Every
// failure mode is normalized into a typed ClientError so callers can
// branch on category instead of string matching.
//
// # Key Types
//
//   - Completer: the boundary interface the conversation layer depends on
//   - Client: HTTP implementation of Completer with request pacing
//   - Turn: one role/content pair of conversation history
//   - Reply: the assistant's answer, as text or a FragmentStream
//   - FragmentStream: lazy sequence of reply fragments ending in io.EOF
//
// # Usage
//
// Create a client and request a streamed reply:
//
//	client := completion.NewClient()
//	reply, err := client.Complete(ctx, history, completion.Options{Stream: true})
//	if err != nil {
//	    return err
//	}
//	defer reply.Stream.Close()
//	for {
//	    fragment, err := reply.Stream.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    render(fragment)
//	}
//
// A FragmentStream is finite and non-restartable; Close must be called
// exactly once whether or not the stream was read to exhaustion.
package completion
