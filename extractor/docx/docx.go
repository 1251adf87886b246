//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package docx extracts text from DOCX documents.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gonfva/docxlib"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
)

// defaultCharsPerPage approximates one printed page. DOCX carries no page
// geometry, so pages are synthesized by character count to keep page-level
// citations meaningful.
const defaultCharsPerPage = 3000

// Extractor extracts paragraph text from DOCX documents.
type Extractor struct {
	charsPerPage int
}

var _ extractor.Extractor = (*Extractor)(nil)

// Option configures an Extractor.
type Option func(*Extractor)

// WithCharsPerPage overrides the synthetic page size in characters.
func WithCharsPerPage(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.charsPerPage = n
		}
	}
}

// New creates a DOCX extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{charsPerPage: defaultCharsPerPage}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the DOCX and returns its paragraphs grouped into synthetic
// pages of roughly charsPerPage characters each.
func (e *Extractor) Extract(ctx context.Context, r io.Reader, name string) (*extractor.Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx %q: %w", name, err)
	}
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx %q: %w", name, err)
	}
	return e.paginate(paragraphTexts(doc)), nil
}

// paragraphTexts collects the text of every non-empty paragraph, run and
// hyperlink runs alike.
func paragraphTexts(doc *docxlib.DocxLib) []string {
	var paragraphs []string
	for _, paragraph := range doc.Paragraphs() {
		var sb strings.Builder
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				appendRunText(&sb, child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				appendRunText(&sb, child.Link.Run.Text.Text)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return paragraphs
}

func appendRunText(sb *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(text)
}

// paginate groups paragraphs into synthetic pages. A page closes once it
// reaches charsPerPage; a single oversized paragraph still becomes one page.
func (e *Extractor) paginate(paragraphs []string) *extractor.Extraction {
	ext := &extractor.Extraction{}
	var sb strings.Builder
	count := 0
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		ext.Pages = append(ext.Pages, extractor.Page{
			Text:   sb.String(),
			Number: len(ext.Pages) + 1,
		})
		sb.Reset()
		count = 0
	}
	for _, p := range paragraphs {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p)
		count += utf8.RuneCountInString(p)
		if count >= e.charsPerPage {
			flush()
		}
	}
	flush()
	ext.TotalPages = len(ext.Pages)
	return ext
}
