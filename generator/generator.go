//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package generator defines the text generation boundary: an assembled
// prompt goes in, generated text comes back, complete or streamed.
package generator

import "context"

// Delta is one increment of a streamed generation.
type Delta struct {
	// Text is the text fragment of this increment.
	Text string
	// Err is set when the stream failed; the channel closes after it.
	Err error
	// Done marks the final increment of the stream.
	Done bool
}

// Generator produces text for an assembled prompt.
type Generator interface {
	// Generate returns the complete generated text. A generation timeout
	// returns the partial text accumulated so far rather than an error.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream returns a channel of text deltas. The channel is
	// closed after a Delta with Done or Err set.
	GenerateStream(ctx context.Context, prompt string) (<-chan Delta, error)
}
