//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/index"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	passages := []*document.Passage{
		{ID: "p1", Content: "the tenant shall pay rent monthly", Page: 1, Type: document.ChunkTypeSmall},
		{ID: "p2", Content: "the landlord maintains the premises", Page: 2, Type: document.ChunkTypeSmall},
		{ID: "p3", Content: "rent rent rent is due on the first", Page: 3, Type: document.ChunkTypeMedium},
	}
	embeddings := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, s.AddBatch(context.Background(), passages, embeddings))
	return s
}

func TestAddBatchMismatch(t *testing.T) {
	s := New()
	err := s.AddBatch(context.Background(), []*document.Passage{{ID: "a", Content: "x"}}, [][]float64{})
	assert.ErrorIs(t, err, index.ErrBatchMismatch)
}

func TestAddBatchDuplicateID(t *testing.T) {
	s := New()
	p := []*document.Passage{{ID: "a", Content: "x"}}
	require.NoError(t, s.AddBatch(context.Background(), p, nil))
	assert.Error(t, s.AddBatch(context.Background(), p, nil))
}

func TestVectorSearch(t *testing.T) {
	s := newTestStore(t)
	results, err := s.VectorSearch(context.Background(), &index.VectorQuery{
		Vector: []float64{1, 0, 0},
		TopK:   2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Passage.ID)
	assert.Equal(t, "p3", results[1].Passage.ID)
	assert.Equal(t, document.MethodVector, results[0].Method)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestVectorSearchTopKClamped(t *testing.T) {
	s := newTestStore(t)
	results, err := s.VectorSearch(context.Background(), &index.VectorQuery{
		Vector: []float64{1, 0, 0},
		TopK:   100,
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestVectorSearchNilQuery(t *testing.T) {
	s := newTestStore(t)
	_, err := s.VectorSearch(context.Background(), nil)
	assert.ErrorIs(t, err, index.ErrNilQuery)
}

func TestLexicalSearchRanksByTermFrequency(t *testing.T) {
	s := newTestStore(t)
	results, err := s.LexicalSearch(context.Background(), &index.LexicalQuery{
		Text: "rent",
		TopK: 3,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// p3 repeats the term and must outrank p1.
	assert.Equal(t, "p3", results[0].Passage.ID)
	assert.Equal(t, "p1", results[1].Passage.ID)
	assert.Equal(t, document.MethodLexical, results[0].Method)
}

func TestLexicalSearchNoMatch(t *testing.T) {
	s := newTestStore(t)
	results, err := s.LexicalSearch(context.Background(), &index.LexicalQuery{
		Text: "arbitration",
		TopK: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalSearchEmptyQuery(t *testing.T) {
	s := newTestStore(t)
	results, err := s.LexicalSearch(context.Background(), &index.LexicalQuery{Text: "  ", TopK: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchResultsAreClones(t *testing.T) {
	s := newTestStore(t)
	results, err := s.LexicalSearch(context.Background(), &index.LexicalQuery{Text: "rent", TopK: 1})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	results[0].Passage.Content = "mutated"
	again, err := s.LexicalSearch(context.Background(), &index.LexicalQuery{Text: "rent", TopK: 1})
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Passage.Content)
}

func TestCountAndClose(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.Close())
	n, err = s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
