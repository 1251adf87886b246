//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package extractor defines the document-to-pages extraction boundary.
package extractor

import (
	"context"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrNoText indicates that a document yielded no extractable text.
var ErrNoText = errors.New("extractor: no extractable text in document")

// scannedCharThreshold is the total character count below which a document
// is treated as scanned (image-only, possibly with OCR artifacts).
const scannedCharThreshold = 100

// Page is one page of extracted text.
type Page struct {
	// Text is the extracted text of the page. May be empty.
	Text string
	// Number is the 1-based page number.
	Number int
}

// Extraction is the ordered per-page text of a single document.
type Extraction struct {
	Pages      []Page
	TotalPages int
}

// CharCount returns the total number of characters across all pages.
func (e *Extraction) CharCount() int {
	if e == nil {
		return 0
	}
	total := 0
	for _, p := range e.Pages {
		total += utf8.RuneCountInString(p.Text)
	}
	return total
}

// IsScanned reports whether the document looks like a scanned (image-only)
// document based on how little text could be extracted.
func (e *Extraction) IsScanned() bool {
	return e.CharCount() < scannedCharThreshold
}

// Extractor converts a raw document into ordered per-page text.
type Extractor interface {
	// Extract reads the document and returns its pages in order.
	// name is the original file name, used for format hints only.
	Extract(ctx context.Context, r io.Reader, name string) (*Extraction, error)
}
