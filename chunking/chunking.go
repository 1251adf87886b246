//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits extracted document pages into retrievable passages
// at three granularities: a fine sentence-aware pass, a coarse paragraph
// pass, and a logical pass anchored on document structure.
package chunking

import (
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	docinternal "trpc.group/trpc-go/trpc-docqa-go/internal/document"
	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/internal/encoding"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// SizeSpec is a target chunk size and the overlap carried between adjacent
// chunks, both in characters (runes).
type SizeSpec struct {
	Size    int
	Overlap int
}

// Config holds the per-granularity size specs for one document.
type Config struct {
	Small  SizeSpec
	Medium SizeSpec
	Large  SizeSpec
}

// AdaptiveConfig returns the chunk configuration for a document of the given
// page count. Short documents get smaller chunks; long documents get larger
// ones so retrieval width stays manageable.
func AdaptiveConfig(totalPages int) Config {
	switch {
	case totalPages <= 20:
		return Config{
			Small:  SizeSpec{Size: 600, Overlap: 80},
			Medium: SizeSpec{Size: 800, Overlap: 120},
			Large:  SizeSpec{Size: 1200, Overlap: 150},
		}
	case totalPages <= 100:
		return Config{
			Small:  SizeSpec{Size: 900, Overlap: 100},
			Medium: SizeSpec{Size: 1200, Overlap: 150},
			Large:  SizeSpec{Size: 1800, Overlap: 200},
		}
	default:
		return Config{
			Small:  SizeSpec{Size: 1200, Overlap: 120},
			Medium: SizeSpec{Size: 1600, Overlap: 180},
			Large:  SizeSpec{Size: 2400, Overlap: 250},
		}
	}
}

// defaultAnchors are the section-header phrases the logical pass looks for,
// matched case-insensitively as substrings of a line.
var defaultAnchors = []string{
	"article",
	"section",
	"clause",
	"schedule",
	"exhibit",
	"appendix",
	"amendment",
	"witnesseth",
	"whereas",
	"in witness whereof",
	"definitions",
	"termination",
	"indemnification",
	"governing law",
}

// Chunker produces passages at all three granularities from a sequence of
// extracted pages.
type Chunker struct {
	config   Config
	anchors  []string
	docID    string
	markdown bool
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithConfig sets the per-granularity size specs. The default is the
// adaptive tier for a short document.
func WithConfig(cfg Config) Option {
	return func(c *Chunker) {
		c.config = cfg
	}
}

// WithAnchors replaces the section-header anchor list used by the logical
// pass.
func WithAnchors(anchors []string) Option {
	return func(c *Chunker) {
		c.anchors = anchors
	}
}

// WithDocumentID sets the document id stamped on every produced passage.
func WithDocumentID(id string) Option {
	return func(c *Chunker) {
		c.docID = id
	}
}

// WithMarkdownStructure makes the logical pass follow markdown headings
// instead of anchor-phrase matching. Use it for markdown sources.
func WithMarkdownStructure() Option {
	return func(c *Chunker) {
		c.markdown = true
	}
}

// New creates a Chunker with options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		config:  AdaptiveConfig(1),
		anchors: defaultAnchors,
		docID:   "doc",
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, spec := range []*SizeSpec{&c.config.Small, &c.config.Medium, &c.config.Large} {
		if spec.Overlap >= spec.Size {
			spec.Overlap = spec.Size / 4
		}
	}
	return c
}

// ChunkPages runs all three passes over the pages and returns the combined
// passages: fine, then coarse, then logical. When scanned is true the
// logical pass collapses each page into a single chunk instead of looking
// for section anchors, which keeps OCR artifacts from fragmenting the index.
func (c *Chunker) ChunkPages(pages []extractor.Page, scanned bool) ([]*document.Passage, error) {
	var passages []*document.Passage

	seq := 0
	for _, page := range pages {
		chunks := c.finePass(page)
		for _, chunk := range chunks {
			passages = append(passages, docinternal.CreatePassage(chunk, page.Number, document.ChunkTypeSmall, c.docID, seq))
			seq++
		}
	}

	seq = 0
	for _, page := range pages {
		chunks := c.coarsePass(page)
		for _, chunk := range chunks {
			passages = append(passages, docinternal.CreatePassage(chunk, page.Number, document.ChunkTypeMedium, c.docID, seq))
			seq++
		}
	}

	seq = 0
	for _, page := range pages {
		var chunks []string
		switch {
		case scanned:
			chunks = c.scannedPass(page)
		case c.markdown:
			chunks = c.markdownPass(page)
		default:
			chunks = c.logicalPass(page)
		}
		for _, chunk := range chunks {
			passages = append(passages, docinternal.CreatePassage(chunk, page.Number, document.ChunkTypeLarge, c.docID, seq))
			seq++
		}
	}

	log.Debugf("chunked %d pages into %d passages (scanned=%v)", len(pages), len(passages), scanned)
	return passages, nil
}

// cleanText normalizes whitespace and guarantees valid UTF-8.
func cleanText(content string) string {
	processed := encoding.NormalizeUTF8(content)
	processed = strings.TrimSpace(processed)
	processed = strings.ReplaceAll(processed, "\r\n", "\n")
	processed = strings.ReplaceAll(processed, "\r", "\n")
	lines := strings.Split(processed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
