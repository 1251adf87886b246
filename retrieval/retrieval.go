//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package retrieval fans a query out across vector, lexical, and entity
// search strategies and fuses the results for downstream ranking.
package retrieval

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/index"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Engine runs the retrieval strategies and merges their results. The index
// and embedder are read-only during the query phase, so one Engine is safe
// for concurrent use across questions.
type Engine struct {
	index    index.Provider
	embedder embedder.Embedder
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmbedder sets the embedder for the vector strategy. Without one the
// vector leg is skipped and retrieval is lexical-only.
func WithEmbedder(e embedder.Embedder) Option {
	return func(eng *Engine) {
		eng.embedder = e
	}
}

// New creates a retrieval engine over the given index.
func New(idx index.Provider, opts ...Option) *Engine {
	eng := &Engine{index: idx}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Retrieve runs all strategies concurrently and returns the fused candidate
// list. A failing strategy contributes nothing; it never fails the whole
// retrieval. All strategies empty means an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, query string, p Params) ([]*document.ScoredPassage, error) {
	var (
		vectorResults  []*document.ScoredPassage
		lexicalResults []*document.ScoredPassage
		entityResults  []*document.ScoredPassage
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		vectorResults = e.vectorLeg(ctx, query, p.TopK)
	}()
	go func() {
		defer wg.Done()
		lexicalResults = e.lexicalLeg(ctx, query, p.TopK)
	}()
	go func() {
		defer wg.Done()
		entityResults = e.entityLeg(ctx, query, p.EntityTopK)
	}()
	wg.Wait()

	merged := merge(vectorResults, entityResults, lexicalResults)
	log.Debugf("retrieval fused %d vector + %d entity + %d lexical into %d candidates",
		len(vectorResults), len(entityResults), len(lexicalResults), len(merged))
	return merged, nil
}

func (e *Engine) vectorLeg(ctx context.Context, query string, topK int) []*document.ScoredPassage {
	if e.embedder == nil {
		return nil
	}
	vec, err := e.embedder.GetEmbedding(ctx, query)
	if err != nil {
		log.Warnf("vector strategy: embedding failed: %v", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	results, err := e.index.VectorSearch(ctx, &index.VectorQuery{Vector: vec, TopK: topK})
	if err != nil {
		log.Warnf("vector strategy: search failed: %v", err)
		return nil
	}
	return results
}

func (e *Engine) lexicalLeg(ctx context.Context, query string, topK int) []*document.ScoredPassage {
	results, err := e.index.LexicalSearch(ctx, &index.LexicalQuery{Text: query, TopK: topK})
	if err != nil {
		log.Warnf("lexical strategy: search failed: %v", err)
		return nil
	}
	return results
}

// entityLeg issues one small lexical lookup per capitalized multi-word span
// in the query. Results are retagged so the merge can track their origin.
func (e *Engine) entityLeg(ctx context.Context, query string, topK int) []*document.ScoredPassage {
	if topK <= 0 {
		topK = defaultEntityTopK
	}
	var results []*document.ScoredPassage
	for _, entity := range extractEntities(query) {
		found, err := e.index.LexicalSearch(ctx, &index.LexicalQuery{Text: entity, TopK: topK})
		if err != nil {
			log.Warnf("entity strategy: lookup %q failed: %v", entity, err)
			continue
		}
		for _, sp := range found {
			sp.Method = document.MethodEntity
			results = append(results, sp)
		}
	}
	return results
}

// merge interleaves the strategy results round-robin in the given priority
// order, skipping passage ids already taken. First occurrence wins, which
// favors source diversity over raw score ordering before rerank.
func merge(lists ...[]*document.ScoredPassage) []*document.ScoredPassage {
	maxLen := 0
	for _, list := range lists {
		if len(list) > maxLen {
			maxLen = len(list)
		}
	}

	var merged []*document.ScoredPassage
	seen := map[string]bool{}
	for i := 0; i < maxLen; i++ {
		for _, list := range lists {
			if i >= len(list) {
				continue
			}
			sp := list[i]
			if sp == nil || sp.Passage == nil || seen[sp.Passage.ID] {
				continue
			}
			seen[sp.Passage.ID] = true
			merged = append(merged, sp)
		}
	}
	return merged
}
