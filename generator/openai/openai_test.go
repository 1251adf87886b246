//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-docqa-go/generator"
)

// sseChunk renders one chat completion chunk as an SSE data line.
func sseChunk(text string) string {
	return fmt.Sprintf("data: {\"id\":\"chatcmpl-1\",\"object\":\"chat.completion.chunk\",\"created\":1,"+
		"\"model\":\"gpt-4o-mini\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", text)
}

// newStreamServer serves the given chunks, then stalls for stall before
// finishing the stream. A zero stall ends the stream normally with [DONE].
func newStreamServer(t *testing.T, stall time.Duration, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher.Flush()

		for _, text := range chunks {
			fmt.Fprint(w, sseChunk(text))
			flusher.Flush()
		}
		if stall > 0 {
			time.Sleep(stall)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func newTestGenerator(srv *httptest.Server, timeout time.Duration) *Generator {
	return New(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithTimeout(timeout),
	)
}

func TestGenerateStream(t *testing.T) {
	srv := newStreamServer(t, 0, "Hello ", "world")
	defer srv.Close()

	ch, err := newTestGenerator(srv, time.Second).GenerateStream(context.Background(), "prompt")
	require.NoError(t, err)

	var deltas []generator.Delta
	for delta := range ch {
		deltas = append(deltas, delta)
	}
	require.Len(t, deltas, 3)
	assert.Equal(t, "Hello ", deltas[0].Text)
	assert.Equal(t, "world", deltas[1].Text)
	assert.True(t, deltas[2].Done)
	for _, delta := range deltas {
		assert.NoError(t, delta.Err)
	}
}

func TestGenerateStreamEmptyPrompt(t *testing.T) {
	_, err := New().GenerateStream(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerateTimeoutReturnsPartialAnswer(t *testing.T) {
	// The server delivers two chunks, then stalls well past the timeout.
	srv := newStreamServer(t, 2*time.Second, "partial ", "answer")
	defer srv.Close()

	text, err := newTestGenerator(srv, 300*time.Millisecond).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "partial answer", text)
}

func TestGenerateStreamTimeoutEndsWithDone(t *testing.T) {
	srv := newStreamServer(t, 2*time.Second, "partial ", "answer")
	defer srv.Close()

	ch, err := newTestGenerator(srv, 300*time.Millisecond).GenerateStream(context.Background(), "prompt")
	require.NoError(t, err)

	var deltas []generator.Delta
	for delta := range ch {
		deltas = append(deltas, delta)
	}
	require.NotEmpty(t, deltas)
	last := deltas[len(deltas)-1]
	assert.True(t, last.Done)
	assert.NoError(t, last.Err)
	for _, delta := range deltas[:len(deltas)-1] {
		assert.NoError(t, delta.Err)
	}
}

func TestGenerateTimeoutWithoutOutputFails(t *testing.T) {
	// Nothing received before the deadline, so there is no partial answer
	// to fall back to.
	srv := newStreamServer(t, 2*time.Second)
	defer srv.Close()

	_, err := newTestGenerator(srv, 300*time.Millisecond).Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
