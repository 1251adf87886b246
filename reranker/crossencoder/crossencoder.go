//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package crossencoder provides a reranker backed by an HTTP cross-encoder
// scoring service.
package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trpc.group/trpc-go/trpc-docqa-go/document"
	"trpc.group/trpc-go/trpc-docqa-go/reranker"
)

// Verify that Client implements the reranker.Reranker interface.
var _ reranker.Reranker = (*Client)(nil)

const (
	defaultTimeout = 10 * time.Second
	defaultModel   = "cross-encoder/ms-marco-MiniLM-L-6-v2"
)

// Client calls an external cross-encoder service to rescore passages.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a cross-encoder client for the given scoring endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rerankRequest struct {
	Model      string      `json:"model"`
	Query      string      `json:"query"`
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type rerankResponse struct {
	Scores []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// Rerank scores the candidates against the query. Passages come back in the
// input order with new scores and Method set to MethodRerank; candidates the
// service did not score get score zero.
func (c *Client) Rerank(ctx context.Context, query string, candidates []*document.ScoredPassage) ([]*document.ScoredPassage, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Model: c.model,
		Query: query,
	}
	for _, sp := range candidates {
		reqBody.Candidates = append(reqBody.Candidates, candidate{
			ID:   sp.Passage.ID,
			Text: sp.Passage.Content,
		})
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call reranker: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reranker returned status %d: %s", resp.StatusCode, body)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	scores := make(map[string]float64, len(parsed.Scores))
	for _, s := range parsed.Scores {
		scores[s.ID] = s.Score
	}

	ranked := make([]*document.ScoredPassage, 0, len(candidates))
	for _, sp := range candidates {
		ranked = append(ranked, &document.ScoredPassage{
			Passage: sp.Passage,
			Score:   scores[sp.Passage.ID],
			Method:  document.MethodRerank,
		})
	}
	return ranked, nil
}
