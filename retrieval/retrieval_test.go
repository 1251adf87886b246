//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/index"
)

// fakeIndex scripts the two search operations.
type fakeIndex struct {
	vector     []*document.ScoredPassage
	vectorErr  error
	lexical    []*document.ScoredPassage
	lexicalErr error
}

func (f *fakeIndex) AddBatch(ctx context.Context, passages []*document.Passage, embeddings [][]float64) error {
	return nil
}

func (f *fakeIndex) VectorSearch(ctx context.Context, q *index.VectorQuery) ([]*document.ScoredPassage, error) {
	return f.vector, f.vectorErr
}

func (f *fakeIndex) LexicalSearch(ctx context.Context, q *index.LexicalQuery) ([]*document.ScoredPassage, error) {
	return cloneScored(f.lexical), f.lexicalErr
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return len(f.lexical), nil }

func (f *fakeIndex) Close() error { return nil }

// fakeEmbedder returns a fixed vector.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{1, 0}, nil
}

func (f *fakeEmbedder) GetDimensions() int { return 2 }

func scored(id string, score float64, method document.RetrievalMethod) *document.ScoredPassage {
	return &document.ScoredPassage{
		Passage: &document.Passage{ID: id, Content: "content " + id, Page: 1},
		Score:   score,
		Method:  method,
	}
}

func cloneScored(in []*document.ScoredPassage) []*document.ScoredPassage {
	out := make([]*document.ScoredPassage, len(in))
	for i, sp := range in {
		c := *sp
		c.Passage = sp.Passage.Clone()
		out[i] = &c
	}
	return out
}

func ids(results []*document.ScoredPassage) []string {
	var out []string
	for _, sp := range results {
		out = append(out, sp.Passage.ID)
	}
	return out
}

func TestAdaptiveParams(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		questions int
		wantTopK  int
		wantTopN  int
	}{
		{"small doc one question", 10, 1, 8, 4},
		{"boundary 20 pages", 20, 1, 8, 4},
		{"boundary 21 pages", 21, 1, 12, 6},
		{"boundary 101 pages", 101, 1, 16, 8},
		{"many questions capped", 10, 10, 24, 12},
		{"zero questions treated as one", 10, 0, 8, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AdaptiveParams(tt.pages, tt.questions)
			assert.Equal(t, tt.wantTopK, p.TopK)
			assert.Equal(t, tt.wantTopN, p.RerankTopN)
			assert.Equal(t, defaultEntityTopK, p.EntityTopK)
		})
	}
}

func TestAdaptiveParamsMonotonic(t *testing.T) {
	prev := 0
	for _, questions := range []int{1, 2, 3, 4, 5} {
		p := AdaptiveParams(50, questions)
		assert.GreaterOrEqual(t, p.TopK, prev)
		prev = p.TopK
	}
}

func TestExtractEntities(t *testing.T) {
	entities := extractEntities("What did Acme Corporation agree with John Smith about Acme Corporation?")
	assert.Equal(t, []string{"Acme Corporation", "John Smith"}, entities)

	assert.Empty(t, extractEntities("what is the rent"))
	assert.Empty(t, extractEntities("Summary"))
}

func TestMergeRoundRobin(t *testing.T) {
	vector := []*document.ScoredPassage{scored("v1", 0.9, document.MethodVector), scored("v2", 0.8, document.MethodVector)}
	entity := []*document.ScoredPassage{scored("e1", 2.0, document.MethodEntity)}
	lexical := []*document.ScoredPassage{scored("l1", 1.5, document.MethodLexical), scored("l2", 1.0, document.MethodLexical), scored("l3", 0.5, document.MethodLexical)}

	merged := merge(vector, entity, lexical)
	assert.Equal(t, []string{"v1", "e1", "l1", "v2", "l2", "l3"}, ids(merged))
}

func TestMergeDedupFirstWins(t *testing.T) {
	vector := []*document.ScoredPassage{scored("shared", 0.9, document.MethodVector)}
	lexical := []*document.ScoredPassage{scored("shared", 5.0, document.MethodLexical), scored("l2", 1.0, document.MethodLexical)}

	merged := merge(vector, nil, lexical)
	require.Len(t, merged, 2)
	assert.Equal(t, "shared", merged[0].Passage.ID)
	// The vector occurrence entered first and keeps its score.
	assert.Equal(t, document.MethodVector, merged[0].Method)
	assert.Equal(t, 0.9, merged[0].Score)
}

func TestRetrieveFusesAllLegs(t *testing.T) {
	idx := &fakeIndex{
		vector:  []*document.ScoredPassage{scored("v1", 0.9, document.MethodVector)},
		lexical: []*document.ScoredPassage{scored("l1", 1.2, document.MethodLexical)},
	}
	eng := New(idx, WithEmbedder(&fakeEmbedder{}))

	results, err := eng.Retrieve(context.Background(), "What did Acme Corporation promise?", AdaptiveParams(5, 1))
	require.NoError(t, err)

	// The entity leg re-issues the lexical lookup for "Acme Corporation",
	// so l1 arrives tagged as entity before the plain lexical copy is
	// deduplicated away.
	require.Len(t, results, 2)
	assert.Equal(t, "v1", results[0].Passage.ID)
	assert.Equal(t, "l1", results[1].Passage.ID)
	assert.Equal(t, document.MethodEntity, results[1].Method)
}

func TestRetrieveSurvivesFailingLegs(t *testing.T) {
	idx := &fakeIndex{
		vectorErr: errors.New("vector down"),
		lexical:   []*document.ScoredPassage{scored("l1", 1.2, document.MethodLexical)},
	}
	eng := New(idx, WithEmbedder(&fakeEmbedder{}))

	results, err := eng.Retrieve(context.Background(), "what is the rent", Params{TopK: 5, EntityTopK: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, ids(results))
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	idx := &fakeIndex{lexical: []*document.ScoredPassage{scored("l1", 1.2, document.MethodLexical)}}
	eng := New(idx, WithEmbedder(&fakeEmbedder{err: errors.New("quota")}))

	results, err := eng.Retrieve(context.Background(), "what is the rent", Params{TopK: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, ids(results))
}

func TestRetrieveAllEmpty(t *testing.T) {
	eng := New(&fakeIndex{})
	results, err := eng.Retrieve(context.Background(), "anything", Params{TopK: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveNoDuplicateIDs(t *testing.T) {
	idx := &fakeIndex{
		vector:  []*document.ScoredPassage{scored("a", 0.9, document.MethodVector), scored("b", 0.8, document.MethodVector)},
		lexical: []*document.ScoredPassage{scored("b", 1.5, document.MethodLexical), scored("a", 1.0, document.MethodLexical)},
	}
	eng := New(idx, WithEmbedder(&fakeEmbedder{}))
	results, err := eng.Retrieve(context.Background(), "no entities here", Params{TopK: 5})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, sp := range results {
		assert.False(t, seen[sp.Passage.ID])
		seen[sp.Passage.ID] = true
	}
	assert.Len(t, results, 2)
}
