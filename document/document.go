//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package document provides the passage types shared across the retrieval pipeline.
package document

// ChunkType identifies the granularity a passage was produced at.
type ChunkType string

// Chunk granularity constants, from shortest to longest span.
const (
	// ChunkTypeSmall is a fine-grained, sentence-aware passage.
	ChunkTypeSmall ChunkType = "small"
	// ChunkTypeMedium is a coarse-grained, paragraph-level passage.
	ChunkTypeMedium ChunkType = "medium"
	// ChunkTypeLarge is a logical passage anchored on document structure
	// (section headers, or a whole page for scanned documents).
	ChunkTypeLarge ChunkType = "large"
	// ChunkTypeUnknown is used when the producing pass is not known.
	ChunkTypeUnknown ChunkType = "unknown"
)

// InclusionPriority returns the ordering key used when packing passages into
// a bounded context: smaller chunks sort first.
func (c ChunkType) InclusionPriority() int {
	switch c {
	case ChunkTypeSmall:
		return 0
	case ChunkTypeMedium:
		return 1
	case ChunkTypeLarge:
		return 2
	default:
		return 3
	}
}

// RetrievalMethod identifies the strategy that produced a scored passage.
type RetrievalMethod string

// Retrieval method constants.
const (
	// MethodVector marks results of embedding similarity search.
	MethodVector RetrievalMethod = "vector"
	// MethodLexical marks results of term-frequency search.
	MethodLexical RetrievalMethod = "lexical"
	// MethodEntity marks results of targeted entity-name lookups.
	MethodEntity RetrievalMethod = "entity"
	// MethodRerank marks passages whose score was assigned by the reranker.
	MethodRerank RetrievalMethod = "rerank"
)

// Passage is an immutable unit of retrievable text. Passages are created once
// at ingestion by the chunker and owned by the passage index for the lifetime
// of the session; they are never mutated afterwards.
type Passage struct {
	// ID is the unique identifier of the passage within its document.
	ID string `json:"id"`

	// Content is the text content of the passage.
	Content string `json:"content"`

	// Page is the 1-based page number the passage was extracted from.
	// 0 means the page is unknown; it is a sentinel, never a null.
	Page int `json:"page"`

	// Type records the granularity the passage was produced at.
	Type ChunkType `json:"type"`

	// DocumentID identifies the source document.
	DocumentID string `json:"document_id,omitempty"`
}

// IsEmpty reports whether the passage carries no content.
func (p *Passage) IsEmpty() bool {
	return p == nil || p.Content == ""
}

// Clone returns a copy of the passage.
func (p *Passage) Clone() *Passage {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// ScoredPassage pairs a passage with a retrieval or rerank score.
// Instances are transient: created per query and discarded after the
// response is assembled.
type ScoredPassage struct {
	// Passage is the retrieved passage.
	Passage *Passage

	// Score is the relevance score; higher is more relevant.
	Score float64

	// Method is the retrieval strategy that produced this result.
	Method RetrievalMethod
}
