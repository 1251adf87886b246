//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package index defines the passage index provider interface: one passage
// set searchable by vector similarity and by lexical term matching.
package index

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-docqa-go/document"
)

// Common index errors.
var (
	// ErrNilQuery indicates a nil query was passed to a search operation.
	ErrNilQuery = errors.New("index: query is nil")
	// ErrBatchMismatch indicates passages and embeddings differ in length.
	ErrBatchMismatch = errors.New("index: passages and embeddings length mismatch")
)

// VectorQuery is an embedding similarity search request.
type VectorQuery struct {
	// Vector is the query embedding.
	Vector []float64
	// TopK is the maximum number of results. Clamped to the passage count.
	TopK int
}

// LexicalQuery is a term-frequency search request.
type LexicalQuery struct {
	// Text is the query text; tokenized by the provider.
	Text string
	// TopK is the maximum number of results. Clamped to the passage count.
	TopK int
}

// Provider stores the passages of a single document and serves both search
// strategies over the same set. Implementations must be safe for concurrent
// reads; the index is not mutated during the query phase.
type Provider interface {
	// AddBatch stores passages with their embedding vectors. Embeddings may
	// be nil when only lexical search is needed.
	AddBatch(ctx context.Context, passages []*document.Passage, embeddings [][]float64) error

	// VectorSearch returns passages ranked by embedding similarity.
	VectorSearch(ctx context.Context, query *VectorQuery) ([]*document.ScoredPassage, error)

	// LexicalSearch returns passages ranked by term relevance.
	LexicalSearch(ctx context.Context, query *LexicalQuery) ([]*document.ScoredPassage, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Close drops all stored passages and releases resources. A provider
	// remains usable after Close; a new document may be added to it.
	Close() error
}
