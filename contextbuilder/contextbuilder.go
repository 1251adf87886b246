//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package contextbuilder selects ranked passages into a fixed character
// budget and renders them as the document context of a prompt.
package contextbuilder

import (
	"fmt"
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/internal/encoding"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Defaults for the budget rules.
const (
	DefaultMaxContextLength = 12000
	DefaultMaxChunkSize     = 2000

	separator = "\n\n---\n\n"
)

// Stats describes one context assembly, for observability and tests.
type Stats struct {
	// Included is the number of passages packed into the context.
	Included int
	// DroppedLowScore counts passages below the minimum score.
	DroppedLowScore int
	// DroppedOversize counts passages whose raw text exceeded the
	// single-chunk maximum.
	DroppedOversize int
	// DroppedBudget counts passages skipped after the budget ran out.
	DroppedBudget int
	// PagesCovered is the number of distinct pages among included passages.
	PagesCovered int
	// AvgScore is the mean score of included passages, 0 when none.
	AvgScore float64
}

// Builder assembles context strings under a character budget.
type Builder struct {
	maxContextLength int
	maxChunkSize     int
	minScore         float64
	priority         func(document.ChunkType) int
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxContextLength sets the total character budget.
func WithMaxContextLength(n int) Option {
	return func(b *Builder) {
		b.maxContextLength = n
	}
}

// WithMaxChunkSize sets the single-passage size limit. Oversized passages
// are skipped whole, never truncated.
func WithMaxChunkSize(n int) Option {
	return func(b *Builder) {
		b.maxChunkSize = n
	}
}

// WithMinScore sets the minimum score for inclusion. Zero (the default)
// disables the threshold.
func WithMinScore(score float64) Option {
	return func(b *Builder) {
		b.minScore = score
	}
}

// WithChunkPriority overrides the inclusion-order priority function. Lower
// values pack first. The default prefers smaller chunk types so the budget
// covers more distinct spots in the document.
func WithChunkPriority(fn func(document.ChunkType) int) Option {
	return func(b *Builder) {
		b.priority = fn
	}
}

// New creates a Builder with options.
func New(opts ...Option) *Builder {
	b := &Builder{
		maxContextLength: DefaultMaxContextLength,
		maxChunkSize:     DefaultMaxChunkSize,
		priority:         document.ChunkType.InclusionPriority,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build packs the ranked passages into a context string. Inclusion order is
// chunk-type priority ascending, then score descending; this is independent
// of the display order the ranker produced. The returned string never
// exceeds the configured budget.
func (b *Builder) Build(ranked []*document.ScoredPassage) (string, Stats) {
	ordered := make([]*document.ScoredPassage, 0, len(ranked))
	for _, sp := range ranked {
		if sp != nil && sp.Passage != nil {
			ordered = append(ordered, sp)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := b.priority(ordered[i].Passage.Type), b.priority(ordered[j].Passage.Type)
		if pi != pj {
			return pi < pj
		}
		return ordered[i].Score > ordered[j].Score
	})

	var stats Stats
	var blocks []string
	var scoreSum float64
	pages := map[int]bool{}
	remaining := b.maxContextLength
	exhausted := false

	for _, sp := range ordered {
		if exhausted {
			stats.DroppedBudget++
			continue
		}
		if b.minScore > 0 && sp.Score < b.minScore {
			stats.DroppedLowScore++
			continue
		}
		if encoding.RuneCount(sp.Passage.Content) > b.maxChunkSize {
			stats.DroppedOversize++
			continue
		}

		block := formatBlock(stats.Included+1, sp.Passage)
		cost := encoding.RuneCount(block)
		if len(blocks) > 0 {
			cost += encoding.RuneCount(separator)
		}
		if cost > remaining {
			// Budget exhausted: everything after this point is skipped,
			// no partial inclusion.
			exhausted = true
			stats.DroppedBudget++
			continue
		}

		remaining -= cost
		blocks = append(blocks, block)
		stats.Included++
		scoreSum += sp.Score
		pages[sp.Passage.Page] = true
	}

	stats.PagesCovered = len(pages)
	if stats.Included > 0 {
		stats.AvgScore = scoreSum / float64(stats.Included)
	}
	log.Debugf("context built: %d included, %d low-score, %d oversize, %d over-budget, %d pages",
		stats.Included, stats.DroppedLowScore, stats.DroppedOversize, stats.DroppedBudget, stats.PagesCovered)
	return strings.Join(blocks, separator), stats
}

func formatBlock(rank int, p *document.Passage) string {
	return fmt.Sprintf("[%d] (page %d)\n%s", rank, p.Page, p.Content)
}
