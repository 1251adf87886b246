//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package orchestrator coordinates execution across one or more decomposed
// questions and aggregates the per-question answers into one response.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-docqa-go/log"
	"trpc.group/trpc-go/trpc-docqa-go/query"
)

// defaultMaxConcurrency bounds the per-question worker fan-out.
const defaultMaxConcurrency = 6

// apologyMessage is returned when no question could be answered.
const apologyMessage = "I apologize, but I could not find an answer to your question in the document. Please try rephrasing it."

// QueryResult is the outcome of answering one question.
type QueryResult struct {
	// Question is the question text.
	Question string
	// Answer is the generated answer, empty on failure.
	Answer string
	// PassageCount is the number of supporting passages.
	PassageCount int
	// Elapsed is the wall time spent on this question.
	Elapsed time.Duration
	// Success reports whether an answer was produced.
	Success bool
	// Error holds the failure message when Success is false.
	Error string
	// Type is the inferred question type.
	Type query.Type
}

// AggregatedResult is the terminal output of the orchestrator.
type AggregatedResult struct {
	// Query is the original user query.
	Query string
	// Results holds the per-question outcomes in original question order.
	Results []QueryResult
	// Answer is the combined answer text.
	Answer string
	// Elapsed is the total wall time.
	Elapsed time.Duration
	// TotalPassages sums supporting passages across questions.
	TotalPassages int
	// Processed is the number of questions executed.
	Processed int
	// Succeeded is the number of questions answered successfully.
	Succeeded int
}

// TypeBreakdown returns the per-question-type result counts.
func (a *AggregatedResult) TypeBreakdown() map[query.Type]int {
	breakdown := make(map[query.Type]int)
	for _, r := range a.Results {
		breakdown[r.Type]++
	}
	return breakdown
}

// Executor answers a single question: retrieve, build context, generate.
type Executor func(ctx context.Context, q query.Question) (answer string, passageCount int, err error)

// Orchestrator fans decomposed questions out over a bounded worker pool and
// reassembles the answers in question order.
type Orchestrator struct {
	maxConcurrency int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrency sets the maximum number of questions answered in
// parallel.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// New creates an Orchestrator with options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{maxConcurrency: defaultMaxConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute answers every question and aggregates the results. A failing
// question is captured as a failed QueryResult and never aborts its
// siblings; results always come back in original question order.
func (o *Orchestrator) Execute(ctx context.Context, originalQuery string, questions []query.Question, exec Executor) (*AggregatedResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("orchestrator: no questions to execute")
	}

	start := time.Now()
	results := make([]QueryResult, len(questions))

	if len(questions) == 1 {
		results[0] = o.runOne(ctx, questions[0], exec)
	} else {
		if err := o.runConcurrent(ctx, questions, exec, results); err != nil {
			return nil, err
		}
	}

	agg := &AggregatedResult{
		Query:     originalQuery,
		Results:   results,
		Elapsed:   time.Since(start),
		Processed: len(questions),
	}
	for _, r := range results {
		agg.TotalPassages += r.PassageCount
		if r.Success {
			agg.Succeeded++
		}
	}
	agg.Answer = aggregateAnswers(results)
	log.Infof("answered %d/%d questions in %v", agg.Succeeded, agg.Processed, agg.Elapsed)
	return agg, nil
}

func (o *Orchestrator) runConcurrent(ctx context.Context, questions []query.Question, exec Executor, results []QueryResult) error {
	width := o.maxConcurrency
	if len(questions) < width {
		width = len(questions)
	}
	pool, err := ants.NewPool(width)
	if err != nil {
		return fmt.Errorf("orchestrator: create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range questions {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = o.runOne(ctx, questions[i], exec)
		}
		if err := pool.Submit(task); err != nil {
			// Pool refused the task; run it on the caller instead.
			task()
		}
	}
	wg.Wait()
	return nil
}

func (o *Orchestrator) runOne(ctx context.Context, q query.Question, exec Executor) QueryResult {
	start := time.Now()
	answer, passages, err := exec(ctx, q)
	result := QueryResult{
		Question:     q.Text,
		Answer:       answer,
		PassageCount: passages,
		Elapsed:      time.Since(start),
		Success:      err == nil,
		Type:         q.Type,
	}
	if err != nil {
		result.Answer = ""
		result.PassageCount = 0
		result.Error = err.Error()
		log.Warnf("question %q failed: %v", q.Text, err)
	}
	return result
}

// aggregateAnswers combines per-question answers: numbered blocks when more
// than one succeeded, the bare answer for exactly one, an apology for none,
// plus a trailing note when some questions failed.
func aggregateAnswers(results []QueryResult) string {
	var succeeded []QueryResult
	for _, r := range results {
		if r.Success {
			succeeded = append(succeeded, r)
		}
	}
	failed := len(results) - len(succeeded)

	var sb strings.Builder
	switch {
	case len(succeeded) == 0:
		sb.WriteString(apologyMessage)
	case len(succeeded) == 1:
		sb.WriteString(succeeded[0].Answer)
	default:
		for i, r := range succeeded {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			fmt.Fprintf(&sb, "**%d. %s**\n%s", i+1, r.Question, r.Answer)
		}
	}
	if failed > 0 && len(succeeded) > 0 {
		fmt.Fprintf(&sb, "\n\n*Note: %d question(s) could not be answered.*", failed)
	}
	return sb.String()
}
