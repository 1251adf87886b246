//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory passage index with cosine
// similarity for vector search and BM25 for lexical search. Suitable for
// single-session document QA; nothing is persisted.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/index"
)

// Verify that Store implements the index.Provider interface.
var _ index.Provider = (*Store)(nil)

// BM25 parameters, standard defaults.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Store is an in-memory passage index.
type Store struct {
	mu sync.RWMutex

	passages map[string]*document.Passage
	vectors  map[string][]float64

	// Lexical search state.
	termFreq map[string]map[string]int // passage id -> term -> count
	docFreq  map[string]int            // term -> number of passages containing it
	docLen   map[string]int            // passage id -> token count
	totalLen int
}

// New creates an empty in-memory index.
func New() *Store {
	return &Store{
		passages: make(map[string]*document.Passage),
		vectors:  make(map[string][]float64),
		termFreq: make(map[string]map[string]int),
		docFreq:  make(map[string]int),
		docLen:   make(map[string]int),
	}
}

// AddBatch stores passages with their embeddings. A nil embeddings slice
// registers the passages for lexical search only.
func (s *Store) AddBatch(ctx context.Context, passages []*document.Passage, embeddings [][]float64) error {
	if embeddings != nil && len(embeddings) != len(passages) {
		return index.ErrBatchMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range passages {
		if p == nil || p.ID == "" {
			return fmt.Errorf("inmemory: passage %d has no id", i)
		}
		if _, exists := s.passages[p.ID]; exists {
			return fmt.Errorf("inmemory: duplicate passage id %s", p.ID)
		}
		s.passages[p.ID] = p.Clone()
		if embeddings != nil && len(embeddings[i]) > 0 {
			vec := make([]float64, len(embeddings[i]))
			copy(vec, embeddings[i])
			s.vectors[p.ID] = vec
		}
		s.indexTerms(p.ID, p.Content)
	}
	return nil
}

// VectorSearch returns the topK most similar passages by cosine similarity.
func (s *Store) VectorSearch(ctx context.Context, query *index.VectorQuery) ([]*document.ScoredPassage, error) {
	if query == nil {
		return nil, index.ErrNilQuery
	}
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("inmemory: empty query vector")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*document.ScoredPassage
	for id, vec := range s.vectors {
		score := cosineSimilarity(query.Vector, vec)
		results = append(results, &document.ScoredPassage{
			Passage: s.passages[id].Clone(),
			Score:   score,
			Method:  document.MethodVector,
		})
	}
	sortByScore(results)
	return truncate(results, clampTopK(query.TopK, len(s.passages))), nil
}

// LexicalSearch returns the topK passages ranked by BM25.
func (s *Store) LexicalSearch(ctx context.Context, query *index.LexicalQuery) ([]*document.ScoredPassage, error) {
	if query == nil {
		return nil, index.ErrNilQuery
	}
	terms := tokenize(query.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.passages)
	if n == 0 {
		return nil, nil
	}
	avgLen := float64(s.totalLen) / float64(n)

	var results []*document.ScoredPassage
	for id, freqs := range s.termFreq {
		score := 0.0
		for _, term := range terms {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			df := float64(s.docFreq[term])
			idf := math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
			norm := tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*float64(s.docLen[id])/avgLen))
			score += idf * norm
		}
		if score <= 0 {
			continue
		}
		results = append(results, &document.ScoredPassage{
			Passage: s.passages[id].Clone(),
			Score:   score,
			Method:  document.MethodLexical,
		})
	}
	sortByScore(results)
	return truncate(results, clampTopK(query.TopK, n)), nil
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

// Close clears the index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = make(map[string]*document.Passage)
	s.vectors = make(map[string][]float64)
	s.termFreq = make(map[string]map[string]int)
	s.docFreq = make(map[string]int)
	s.docLen = make(map[string]int)
	s.totalLen = 0
	return nil
}

// indexTerms updates the lexical statistics for one passage.
// Caller holds the write lock.
func (s *Store) indexTerms(id, content string) {
	terms := tokenize(content)
	freqs := make(map[string]int, len(terms))
	for _, t := range terms {
		freqs[t]++
	}
	for t := range freqs {
		s.docFreq[t]++
	}
	s.termFreq[id] = freqs
	s.docLen[id] = len(terms)
	s.totalLen += len(terms)
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortByScore(results []*document.ScoredPassage) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func clampTopK(topK, available int) int {
	if topK <= 0 || topK > available {
		return available
	}
	return topK
}

func truncate(results []*document.ScoredPassage, n int) []*document.ScoredPassage {
	if len(results) > n {
		return results[:n]
	}
	return results
}
