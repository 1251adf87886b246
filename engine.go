//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package docqa

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-docqa-go/chunking"
	"trpc.group/trpc-go/trpc-docqa-go/contextbuilder"
	"trpc.group/trpc-go/trpc-docqa-go/document"
	docinternal "trpc.group/trpc-go/trpc-docqa-go/internal/document"
	"trpc.group/trpc-go/trpc-docqa-go/embedder"
	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/generator"
	"trpc.group/trpc-go/trpc-docqa-go/index"
	"trpc.group/trpc-go/trpc-docqa-go/index/inmemory"
	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/orchestrator"
	"trpc.group/trpc-go/trpc-docqa-go/query"
	"trpc.group/trpc-go/trpc-docqa-go/reranker"
	"trpc.group/trpc-go/trpc-docqa-go/retrieval"
	"trpc.group/trpc-go/trpc-docqa-go/telemetry/trace"
)

const defaultIngestWorkers = 4

// IngestResult describes one completed ingestion.
type IngestResult struct {
	// DocumentID is the id assigned to the document.
	DocumentID string
	// Name is the original file name.
	Name string
	// Pages is the total page count.
	Pages int
	// Passages is the number of passages indexed.
	Passages int
	// Scanned reports whether the document was treated as scanned.
	Scanned bool
}

// Engine is the document QA facade: Ingest loads one document, Answer and
// AnswerStream query it.
type Engine struct {
	extractor     extractor.Extractor
	embedder      embedder.Embedder
	index         index.Provider
	reranker      reranker.Reranker
	generator     generator.Generator
	decomposer    *query.Decomposer
	orchestrator  *orchestrator.Orchestrator
	builder       *contextbuilder.Builder
	retriever     *retrieval.Engine
	anchors       []string
	ingestWorkers int

	mu         sync.RWMutex
	docID      string
	docName    string
	totalPages int
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtractor sets the document extractor.
func WithExtractor(ex extractor.Extractor) Option {
	return func(e *Engine) {
		e.extractor = ex
	}
}

// WithEmbedder sets the embedder for vector retrieval. Without one the
// engine runs lexical-only retrieval.
func WithEmbedder(em embedder.Embedder) Option {
	return func(e *Engine) {
		e.embedder = em
	}
}

// WithIndex replaces the default in-memory passage index.
func WithIndex(idx index.Provider) Option {
	return func(e *Engine) {
		e.index = idx
	}
}

// WithReranker sets the reranker. Without one candidates keep their
// retrieval order.
func WithReranker(rr reranker.Reranker) Option {
	return func(e *Engine) {
		e.reranker = rr
	}
}

// WithGenerator sets the answer generator.
func WithGenerator(g generator.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithMaxConcurrency bounds the multi-question fan-out.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		e.orchestrator = orchestrator.New(orchestrator.WithMaxConcurrency(n))
	}
}

// WithContextOptions configures the context budget builder.
func WithContextOptions(opts ...contextbuilder.Option) Option {
	return func(e *Engine) {
		e.builder = contextbuilder.New(opts...)
	}
}

// WithAnchors replaces the section-anchor list used when chunking.
func WithAnchors(anchors []string) Option {
	return func(e *Engine) {
		e.anchors = anchors
	}
}

// WithIngestWorkers bounds the embedding parallelism during ingestion.
func WithIngestWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.ingestWorkers = n
		}
	}
}

// New creates an Engine with options.
func New(opts ...Option) *Engine {
	e := &Engine{
		decomposer:    query.NewDecomposer(),
		orchestrator:  orchestrator.New(),
		builder:       contextbuilder.New(),
		ingestWorkers: defaultIngestWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.index == nil {
		e.index = inmemory.New()
	}
	e.retriever = retrieval.New(e.index, retrieval.WithEmbedder(e.embedder))
	return e
}

// Ingest extracts, chunks, embeds, and indexes one document, replacing any
// previously loaded document. A document with zero extractable text is
// rejected before chunking.
func (e *Engine) Ingest(ctx context.Context, r io.Reader, name string) (*IngestResult, error) {
	ctx, span := trace.Tracer.Start(ctx, "docqa.ingest",
		oteltrace.WithAttributes(attribute.String("document.name", name)))
	defer span.End()

	if e.extractor == nil {
		return nil, ErrNoExtractor
	}
	ext, err := e.extractor.Extract(ctx, r, name)
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}
	if ext.CharCount() == 0 {
		return nil, extractor.ErrNoText
	}

	docID := docinternal.GenerateDocumentID()
	chunkOpts := []chunking.Option{
		chunking.WithConfig(chunking.AdaptiveConfig(ext.TotalPages)),
		chunking.WithDocumentID(docID),
	}
	if e.anchors != nil {
		chunkOpts = append(chunkOpts, chunking.WithAnchors(e.anchors))
	}
	if isMarkdownName(name) {
		chunkOpts = append(chunkOpts, chunking.WithMarkdownStructure())
	}
	scanned := ext.IsScanned()
	passages, err := chunking.New(chunkOpts...).ChunkPages(ext.Pages, scanned)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}

	embeddings, err := e.embedAll(ctx, passagesContents(passages))
	if err != nil {
		return nil, err
	}
	// Single-document engine: drop the previous document before indexing.
	e.mu.RLock()
	loaded := e.docID != ""
	e.mu.RUnlock()
	if loaded {
		if err := e.index.Close(); err != nil {
			return nil, fmt.Errorf("clear index: %w", err)
		}
	}
	if err := e.index.AddBatch(ctx, passages, embeddings); err != nil {
		return nil, fmt.Errorf("index passages: %w", err)
	}

	e.mu.Lock()
	e.docID = docID
	e.docName = name
	e.totalPages = ext.TotalPages
	e.mu.Unlock()

	span.SetAttributes(
		attribute.Int("document.pages", ext.TotalPages),
		attribute.Int("document.passages", len(passages)),
		attribute.Bool("document.scanned", scanned),
	)
	log.Infof("ingested %q: %d pages, %d chars, %d passages, scanned=%v",
		name, ext.TotalPages, ext.CharCount(), len(passages), scanned)
	return &IngestResult{
		DocumentID: docID,
		Name:       name,
		Pages:      ext.TotalPages,
		Passages:   len(passages),
		Scanned:    scanned,
	}, nil
}

// embedAll computes passage embeddings with bounded parallelism. A failed
// embedding leaves its slot empty, degrading that passage to lexical-only
// retrieval. Returns nil when no embedder is configured.
func (e *Engine) embedAll(ctx context.Context, contents []string) ([][]float64, error) {
	if e.embedder == nil {
		return nil, nil
	}
	workers := e.ingestWorkers
	if len(contents) < workers {
		workers = len(contents)
	}
	if workers == 0 {
		return nil, nil
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embed pool: %w", err)
	}
	defer pool.Release()

	embeddings := make([][]float64, len(contents))
	var wg sync.WaitGroup
	for i := range contents {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			vec, err := e.embedder.GetEmbedding(ctx, contents[i])
			if err != nil {
				log.Warnf("embedding passage %d failed: %v", i, err)
				return
			}
			embeddings[i] = vec
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	return embeddings, nil
}

// Answer decomposes the query, answers every question, and returns the
// aggregated result.
func (e *Engine) Answer(ctx context.Context, q string) (*orchestrator.AggregatedResult, error) {
	ctx, span := trace.Tracer.Start(ctx, "docqa.answer")
	defer span.End()

	q = strings.TrimSpace(q)
	if err := e.validateQuery(q); err != nil {
		return nil, err
	}

	questions := e.decomposer.Split(q)
	params := retrieval.AdaptiveParams(e.pages(), len(questions))
	span.SetAttributes(attribute.Int("query.questions", len(questions)))

	return e.orchestrator.Execute(ctx, q, questions, func(ctx context.Context, question query.Question) (string, int, error) {
		return e.answerOne(ctx, question, params)
	})
}

// AnswerStream streams the answer for a query. Multi-question queries fall
// back to the aggregated non-streaming path, delivered as a single delta.
func (e *Engine) AnswerStream(ctx context.Context, q string) (<-chan generator.Delta, error) {
	q = strings.TrimSpace(q)
	if err := e.validateQuery(q); err != nil {
		return nil, err
	}

	questions := e.decomposer.Split(q)
	if len(questions) > 1 {
		agg, err := e.Answer(ctx, q)
		if err != nil {
			return nil, err
		}
		ch := make(chan generator.Delta, 2)
		ch <- generator.Delta{Text: agg.Answer}
		ch <- generator.Delta{Done: true}
		close(ch)
		return ch, nil
	}

	prompt, _, err := e.buildQuestionPrompt(ctx, questions[0], retrieval.AdaptiveParams(e.pages(), 1))
	if err != nil {
		return nil, err
	}
	return e.generator.GenerateStream(ctx, prompt)
}

// answerOne runs the retrieve, rank, budget, generate pipeline for one
// question.
func (e *Engine) answerOne(ctx context.Context, question query.Question, params retrieval.Params) (string, int, error) {
	prompt, supporting, err := e.buildQuestionPrompt(ctx, question, params)
	if err != nil {
		return "", 0, err
	}
	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return "", 0, fmt.Errorf("generate answer: %w", err)
	}
	return answer, supporting, nil
}

func (e *Engine) buildQuestionPrompt(ctx context.Context, question query.Question, params retrieval.Params) (string, int, error) {
	candidates, err := e.retriever.Retrieve(ctx, question.Text, params)
	if err != nil {
		return "", 0, fmt.Errorf("retrieve passages: %w", err)
	}
	ranked := reranker.Rank(ctx, e.reranker, question.Text, candidates, params.RerankTopN)
	docContext, stats := e.builder.Build(ranked)
	return buildPrompt(docContext, question.Text), stats.Included, nil
}

func (e *Engine) validateQuery(q string) error {
	if q == "" {
		return ErrEmptyQuery
	}
	if e.generator == nil {
		return ErrNoGenerator
	}
	e.mu.RLock()
	loaded := e.docID != ""
	e.mu.RUnlock()
	if !loaded {
		return ErrNoDocument
	}
	return nil
}

func (e *Engine) pages() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalPages
}

func passagesContents(passages []*document.Passage) []string {
	contents := make([]string, len(passages))
	for i, p := range passages {
		contents[i] = p.Content
	}
	return contents
}

func isMarkdownName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
