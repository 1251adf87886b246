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

// coarsePass splits one page into paragraph-level chunks at the Medium size.
// Paragraphs are packed together until the target size is reached; a
// paragraph larger than the target is hard-split on character boundaries.
func (c *Chunker) coarsePass(page extractor.Page) []string {
	content := cleanText(page.Text)
	if content == "" {
		return nil
	}

	size := c.config.Medium.Size
	overlap := c.config.Medium.Overlap

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	flush := func() string {
		if bufLen == 0 {
			return ""
		}
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buf.Reset()
		bufLen = 0
		return chunk
	}

	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraLen := encoding.RuneCount(para)

		// Oversized paragraph: flush what we have and hard-split it.
		if paraLen > size {
			flush()
			rest := para
			for encoding.RuneCount(rest) > size {
				var head string
				head, rest = encoding.SplitAt(rest, size)
				chunks = append(chunks, strings.TrimSpace(head))
				rest = encoding.Tail(head, overlap) + rest
				// Tail re-prepends overlap; stop once the remainder fits.
				if encoding.RuneCount(rest) <= size {
					break
				}
			}
			if trimmed := strings.TrimSpace(rest); trimmed != "" {
				chunks = append(chunks, trimmed)
			}
			continue
		}

		if bufLen > 0 && bufLen+paraLen+2 > size {
			prev := flush()
			// Carry overlap from the previous chunk into the next one.
			if tail := encoding.Tail(prev, overlap); tail != "" {
				buf.WriteString(tail)
				buf.WriteString("\n\n")
				bufLen = encoding.RuneCount(tail) + 2
			}
		}
		if bufLen > 0 {
			buf.WriteString("\n\n")
			bufLen += 2
		}
		buf.WriteString(para)
		bufLen += paraLen
	}
	flush()
	return chunks
}
