//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package auto

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchUnknownExtensionFallsBackToPlain(t *testing.T) {
	ext, err := New().Extract(context.Background(), strings.NewReader("some text"), "notes.unknown")
	require.NoError(t, err)
	assert.Equal(t, 1, ext.TotalPages)
	assert.Equal(t, "some text", ext.Pages[0].Text)
}

func TestDispatchPDFExtension(t *testing.T) {
	// Plain text is not a valid PDF; an error proves the PDF path was taken.
	_, err := New().Extract(context.Background(), strings.NewReader("some text"), "lease.PDF")
	assert.Error(t, err)
}

func TestDispatchDocxExtension(t *testing.T) {
	_, err := New().Extract(context.Background(), strings.NewReader("some text"), "lease.docx")
	assert.Error(t, err)
}
