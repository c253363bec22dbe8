// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract defines the text-extraction collaborator boundaries
// and pure text statistics. The conversation core consumes these
// interfaces; it never implements recognition itself.
package extract

import (
	"context"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// COLLABORATOR BOUNDARIES
// =============================================================================

// Recognizer extracts plain text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// LanguageDetector names the language of a piece of text.
type LanguageDetector interface {
	Detect(text string) string
}

// =============================================================================
// TEXT STATISTICS
// =============================================================================

// TextStats summarizes a piece of extracted text.
type TextStats struct {
	Characters int
	Words      int
	Sentences  int
	Paragraphs int
}

// Analyze computes statistics for text. Characters counts runes, words
// are whitespace-separated runs, sentences end at '.', '!' or '?', and
// paragraphs are separated by blank lines.
func Analyze(text string) TextStats {
	return TextStats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Sentences:  countSentences(text),
		Paragraphs: countParagraphs(text),
	}
}

func countSentences(text string) int {
	count := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

func countParagraphs(text string) int {
	count := 0
	inParagraph := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			inParagraph = false
			continue
		}
		if !inParagraph {
			count++
			inParagraph = true
		}
	}
	return count
}
