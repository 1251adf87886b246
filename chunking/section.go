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
	"trpc.group/trpc-go/trpc-docqa-go/internal/encoding"
)

// logicalPass groups lines into section chunks. A section starts at a line
// containing one of the configured anchor phrases and ends at a blank line
// or the next anchor. Pages without anchors yield no logical chunks.
func (c *Chunker) logicalPass(page extractor.Page) []string {
	content := cleanText(page.Text)
	if content == "" {
		return nil
	}

	var chunks []string
	var section []string

	flush := func() {
		if len(section) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(section, "\n"))
		section = nil
		if chunk == "" {
			return
		}
		// Cap runaway sections at the Large size.
		for encoding.RuneCount(chunk) > c.config.Large.Size {
			var head string
			head, chunk = encoding.SplitAt(chunk, c.config.Large.Size)
			chunks = append(chunks, strings.TrimSpace(head))
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	inSection := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
			inSection = false
		case c.isAnchorLine(trimmed):
			flush()
			inSection = true
			section = append(section, trimmed)
		case inSection:
			section = append(section, trimmed)
		}
	}
	flush()
	return chunks
}

// scannedPass collapses all non-empty lines of a page into one chunk.
// Anchor detection is skipped: OCR output is too noisy for it.
func (c *Chunker) scannedPass(page extractor.Page) []string {
	content := cleanText(page.Text)
	if content == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return []string{strings.Join(lines, "\n")}
}

func (c *Chunker) isAnchorLine(line string) bool {
	lower := strings.ToLower(line)
	for _, anchor := range c.anchors {
		if strings.Contains(lower, anchor) {
			return true
		}
	}
	return false
}
