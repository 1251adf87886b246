//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package docx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gomutex/godocx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDocx generates a well-formed DOCX with the given paragraphs.
func newTestDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	for _, text := range paragraphs {
		doc.AddParagraph(text)
	}

	var buf bytes.Buffer
	_, err = doc.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractParagraphs(t *testing.T) {
	data := newTestDocx(t, "First clause of the agreement.", "Second clause of the agreement.")

	ext, err := New().Extract(context.Background(), bytes.NewReader(data), "lease.docx")
	require.NoError(t, err)

	assert.Equal(t, 1, ext.TotalPages)
	require.Len(t, ext.Pages, 1)
	assert.Contains(t, ext.Pages[0].Text, "First clause")
	assert.Contains(t, ext.Pages[0].Text, "Second clause")
	// Paragraph boundaries survive as blank lines for the chunker.
	assert.Contains(t, ext.Pages[0].Text, ".\n\nSecond")
}

func TestExtractSyntheticPagination(t *testing.T) {
	data := newTestDocx(t, "Clause one text here.", "Clause two text here.", "Clause three text here.")

	// Each paragraph exceeds the page size on its own, so every paragraph
	// closes a page.
	ext, err := New(WithCharsPerPage(10)).Extract(context.Background(), bytes.NewReader(data), "lease.docx")
	require.NoError(t, err)

	assert.Equal(t, 3, ext.TotalPages)
	for i, p := range ext.Pages {
		assert.Equal(t, i+1, p.Number)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	data := newTestDocx(t)

	ext, err := New().Extract(context.Background(), bytes.NewReader(data), "empty.docx")
	require.NoError(t, err)
	assert.Zero(t, ext.TotalPages)
	assert.Zero(t, ext.CharCount())
}

func TestExtractInvalidInput(t *testing.T) {
	_, err := New().Extract(context.Background(), strings.NewReader("not a docx"), "broken.docx")
	assert.Error(t, err)
}
