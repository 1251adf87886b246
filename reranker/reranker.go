//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package reranker reduces the fused candidate set to a final ranked list:
// dedup by passage id, cross-encoder rescoring with a fallback, and the
// final display sort.
package reranker

import (
	"context"
	"sort"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Reranker assigns new relevance scores to candidate passages.
type Reranker interface {
	// Rerank assigns new scores to the candidates against the query and
	// sets Method to MethodRerank. Output order is unspecified; Rank owns
	// the final sort.
	Rerank(ctx context.Context, query string, candidates []*document.ScoredPassage) ([]*document.ScoredPassage, error)
}

// Rank runs the full dedup + rerank + sort stage. topN bounds the output
// width. When rr is nil, errors, or returns only zero scores (a silent
// failure), the pre-rerank candidates truncated to topN keep their original
// scores.
func Rank(ctx context.Context, rr Reranker, query string, candidates []*document.ScoredPassage, topN int) []*document.ScoredPassage {
	candidates = Dedup(candidates)
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}
	if topN == 0 {
		return nil
	}

	ranked := rerankOrFallback(ctx, rr, query, candidates, topN)
	sortFinal(ranked)
	return ranked
}

// Dedup removes duplicate passage ids, keeping the first occurrence so the
// merge's round-robin priority survives.
func Dedup(candidates []*document.ScoredPassage) []*document.ScoredPassage {
	seen := map[string]bool{}
	var out []*document.ScoredPassage
	for _, sp := range candidates {
		if sp == nil || sp.Passage == nil || seen[sp.Passage.ID] {
			continue
		}
		seen[sp.Passage.ID] = true
		out = append(out, sp)
	}
	return out
}

func rerankOrFallback(ctx context.Context, rr Reranker, query string, candidates []*document.ScoredPassage, topN int) []*document.ScoredPassage {
	if rr == nil {
		return candidates[:topN]
	}

	request := candidates
	if len(request) > topN {
		request = request[:topN]
	}
	ranked, err := rr.Rerank(ctx, query, request)
	if err != nil {
		log.Warnf("reranker failed, falling back to retrieval order: %v", err)
		return candidates[:topN]
	}
	if allZeroScores(ranked) {
		log.Warn("reranker returned all-zero scores, falling back to retrieval order")
		return candidates[:topN]
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func allZeroScores(ranked []*document.ScoredPassage) bool {
	for _, sp := range ranked {
		if sp.Score != 0 {
			return false
		}
	}
	return true
}

// sortFinal orders by score descending with page number descending as the
// tie-break. Downstream consumers depend on this exact ordering.
// TODO: revisit the page-descending direction with product; it surfaces
// later pages first among equal scores.
func sortFinal(results []*document.ScoredPassage) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Passage.Page > results[j].Passage.Page
	})
}
