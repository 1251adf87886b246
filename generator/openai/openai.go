//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI chat completion generator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-docqa-go/generator"
	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Verify that Generator implements the generator.Generator interface.
var _ generator.Generator = (*Generator)(nil)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds one generation. On timeout the partial text
	// accumulated so far is returned instead of an error.
	DefaultTimeout = 30 * time.Second
)

// Generator implements the generator.Generator interface on the OpenAI chat
// completions API.
type Generator struct {
	client         openai.Client
	model          string
	timeout        time.Duration
	apiKey         string
	baseURL        string
	requestOptions []option.RequestOption
}

// Option represents a functional option for configuring the Generator.
type Option func(*Generator)

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithTimeout sets the per-generation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		g.timeout = timeout
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(g *Generator) {
		g.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for OpenAI API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) {
		g.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for the OpenAI client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(g *Generator) {
		g.requestOptions = append(g.requestOptions, opts...)
	}
}

// New creates a new OpenAI generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}

	var clientOpts []option.RequestOption
	if g.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(g.apiKey))
	}
	if g.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(g.baseURL))
	}
	g.client = openai.NewClient(clientOpts...)
	return g
}

// Generate returns the complete generated text for the prompt. When the
// generation times out with partial output already received, that partial
// text is returned without an error.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ch, err := g.GenerateStream(ctx, prompt)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for delta := range ch {
		if delta.Err != nil {
			if sb.Len() > 0 {
				log.Warnf("generation interrupted, returning partial answer: %v", delta.Err)
				return sb.String(), nil
			}
			return "", delta.Err
		}
		sb.WriteString(delta.Text)
	}
	return sb.String(), nil
}

// GenerateStream streams text deltas for the prompt. The stream ends with a
// Done delta; a timeout after partial output ends the stream normally.
func (g *Generator) GenerateStream(ctx context.Context, prompt string) (<-chan generator.Delta, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	ch := make(chan generator.Delta, 16)
	go func() {
		defer close(ch)

		streamCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		params := openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: shared.ChatModel(g.model),
		}
		requestOpts := make([]option.RequestOption, len(g.requestOptions))
		copy(requestOpts, g.requestOptions)

		stream := g.client.Chat.Completions.NewStreaming(streamCtx, params, requestOpts...)
		defer stream.Close()

		received := false
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				received = true
				ch <- generator.Delta{Text: text}
			}
		}
		if err := stream.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && received {
				log.Warnf("generation timed out after %v, truncating stream", g.timeout)
				ch <- generator.Delta{Done: true}
				return
			}
			ch <- generator.Delta{Err: fmt.Errorf("generate: %w", err)}
			return
		}
		ch <- generator.Delta{Done: true}
	}()
	return ch, nil
}
