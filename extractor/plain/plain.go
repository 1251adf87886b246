//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package plain extracts text and markdown documents. Form feed characters
// act as page breaks; a document without them is a single page.
package plain

import (
	"context"
	"fmt"
	"io"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/internal/encoding"
)

// Extractor reads a text document as-is.
type Extractor struct{}

var _ extractor.Extractor = (*Extractor)(nil)

// New creates a plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads the whole document, normalizes it to UTF-8, and splits it
// into pages on form feed characters.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, name string) (*extractor.Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text %q: %w", name, err)
	}
	text := encoding.NormalizeUTF8(string(data))

	ext := &extractor.Extraction{}
	for i, pageText := range strings.Split(text, "\f") {
		ext.Pages = append(ext.Pages, extractor.Page{Text: pageText, Number: i + 1})
	}
	ext.TotalPages = len(ext.Pages)
	return ext, nil
}
