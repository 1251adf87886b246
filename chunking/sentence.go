//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
)

// finePass splits one page into sentence-aware chunks at the Small size.
func (c *Chunker) finePass(page extractor.Page) []string {
	content := cleanText(page.Text)
	if content == "" {
		return nil
	}

	size := c.config.Small.Size
	overlap := c.config.Small.Overlap
	runes := []rune(content)
	if len(runes) <= size {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := min(start+size, len(runes))
		if end < len(runes) {
			// Prefer breaking after a sentence; fall back to whitespace.
			// The break must advance past the overlap window, otherwise the
			// cursor would not make forward progress.
			if bp := findSentenceBreak(runes, start, end); bp != -1 && bp-start > overlap {
				end = bp
			}
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks
}

// findSentenceBreak scans backwards from targetEnd for a sentence terminator,
// then for any whitespace, and returns the position just after it. Returns -1
// when no suitable break exists in (start, targetEnd).
func findSentenceBreak(runes []rune, start, targetEnd int) int {
	for i := targetEnd - 1; i > start; i-- {
		switch runes[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	for i := targetEnd - 1; i > start; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return -1
}
