//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package auto dispatches extraction to a concrete extractor based on the
// file extension.
package auto

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/extractor/docx"
	"trpc.group/trpc-go/trpc-docqa-go/extractor/pdf"
	"trpc.group/trpc-go/trpc-docqa-go/extractor/plain"
)

// Extractor routes documents to the PDF, DOCX, or plain text extractor by
// extension. Unknown extensions fall back to plain text.
type Extractor struct {
	pdf   *pdf.Extractor
	docx  *docx.Extractor
	plain *plain.Extractor
}

var _ extractor.Extractor = (*Extractor)(nil)

// New creates the dispatching extractor.
func New() *Extractor {
	return &Extractor{
		pdf:   pdf.New(),
		docx:  docx.New(),
		plain: plain.New(),
	}
}

// Extract picks the concrete extractor from name's extension and delegates.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, name string) (*extractor.Extraction, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return e.pdf.Extract(ctx, r, name)
	case ".docx":
		return e.docx.Extract(ctx, r, name)
	default:
		return e.plain.Extract(ctx, r, name)
	}
}
