//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package reranker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/document"
)

type scriptedReranker struct {
	scores map[string]float64
	err    error
}

func (s *scriptedReranker) Rerank(ctx context.Context, query string, candidates []*document.ScoredPassage) ([]*document.ScoredPassage, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*document.ScoredPassage
	for _, sp := range candidates {
		out = append(out, &document.ScoredPassage{
			Passage: sp.Passage,
			Score:   s.scores[sp.Passage.ID],
			Method:  document.MethodRerank,
		})
	}
	return out, nil
}

func sp(id string, page int, score float64) *document.ScoredPassage {
	return &document.ScoredPassage{
		Passage: &document.Passage{ID: id, Content: "text " + id, Page: page},
		Score:   score,
		Method:  document.MethodVector,
	}
}

func ids(results []*document.ScoredPassage) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Passage.ID)
	}
	return out
}

func TestDedupFirstWins(t *testing.T) {
	in := []*document.ScoredPassage{sp("a", 1, 0.9), sp("b", 2, 0.8), sp("a", 1, 0.1)}
	out := Dedup(in)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"a", "b"}, ids(out))
	assert.Equal(t, 0.9, out[0].Score)
}

func TestRankReorders(t *testing.T) {
	rr := &scriptedReranker{scores: map[string]float64{"a": 0.1, "b": 0.9, "c": 0.5}}
	in := []*document.ScoredPassage{sp("a", 1, 3), sp("b", 2, 2), sp("c", 3, 1)}

	out := Rank(context.Background(), rr, "q", in, 3)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b", "c", "a"}, ids(out))
	assert.Equal(t, document.MethodRerank, out[0].Method)
}

func TestRankFallbackOnError(t *testing.T) {
	rr := &scriptedReranker{err: errors.New("service down")}
	in := []*document.ScoredPassage{sp("a", 1, 3), sp("b", 2, 2), sp("c", 3, 1)}

	out := Rank(context.Background(), rr, "q", in, 2)
	require.Len(t, out, 2)
	// Pre-rerank order truncated to topN, original scores preserved.
	assert.Equal(t, []string{"a", "b"}, ids(out))
	assert.Equal(t, 3.0, out[0].Score)
	assert.Equal(t, 2.0, out[1].Score)
	assert.Equal(t, document.MethodVector, out[0].Method)
}

func TestRankFallbackOnAllZeroScores(t *testing.T) {
	rr := &scriptedReranker{scores: map[string]float64{}}
	in := []*document.ScoredPassage{sp("a", 1, 3), sp("b", 2, 2)}

	out := Rank(context.Background(), rr, "q", in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"a", "b"}, ids(out))
	assert.Equal(t, 3.0, out[0].Score)
}

func TestRankNilReranker(t *testing.T) {
	in := []*document.ScoredPassage{sp("a", 1, 1), sp("b", 2, 3)}
	out := Rank(context.Background(), nil, "q", in, 2)
	require.Len(t, out, 2)
	// Final sort still applies: score descending.
	assert.Equal(t, []string{"b", "a"}, ids(out))
}

func TestRankTieBreakPageDescending(t *testing.T) {
	rr := &scriptedReranker{scores: map[string]float64{"a": 0.5, "b": 0.5, "c": 0.5}}
	in := []*document.ScoredPassage{sp("a", 2, 1), sp("b", 9, 1), sp("c", 5, 1)}

	out := Rank(context.Background(), rr, "q", in, 3)
	assert.Equal(t, []string{"b", "c", "a"}, ids(out))
}

func TestRankDeduplicatesBeforeRerank(t *testing.T) {
	rr := &scriptedReranker{scores: map[string]float64{"a": 0.9, "b": 0.2}}
	in := []*document.ScoredPassage{sp("a", 1, 1), sp("a", 1, 0.5), sp("b", 2, 0.4)}

	out := Rank(context.Background(), rr, "q", in, 5)
	assert.Equal(t, []string{"a", "b"}, ids(out))
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank(context.Background(), nil, "q", nil, 5))
}
