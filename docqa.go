//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package docqa answers natural-language queries, including multi-part
// queries, against a single uploaded legal document with page-level
// citations. It chunks the document at multiple granularities, fuses
// vector, lexical, and entity retrieval, reranks and packs candidates into
// a character budget, and aggregates per-question answers into one
// response.
package docqa

import "errors"

// Engine input validation errors.
var (
	// ErrNoDocument indicates no document has been ingested yet.
	ErrNoDocument = errors.New("docqa: no document loaded")
	// ErrEmptyQuery indicates an empty or blank query.
	ErrEmptyQuery = errors.New("docqa: query is empty")
	// ErrNoGenerator indicates the engine was built without a generator.
	ErrNoGenerator = errors.New("docqa: no generator configured")
	// ErrNoExtractor indicates the engine was built without an extractor.
	ErrNoExtractor = errors.New("docqa: no extractor configured")
)
