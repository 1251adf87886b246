//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"trpc.group/trpc-go/trpc-docqa-go/extractor"
	"trpc.group/trpc-go/trpc-docqa-go/internal/encoding"
)

var markdownParser = goldmark.New()

// markdownPass groups a markdown page into heading-delimited sections. Each
// heading starts a new chunk; content before the first heading forms its own
// chunk. Used instead of anchor matching when the source is markdown.
func (c *Chunker) markdownPass(page extractor.Page) []string {
	content := cleanText(page.Text)
	if content == "" {
		return nil
	}

	source := []byte(content)
	root := markdownParser.Parser().Parse(text.NewReader(source))

	var chunks []string
	var section []string

	flush := func() {
		if len(section) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(section, "\n\n"))
		section = nil
		if chunk == "" {
			return
		}
		for encoding.RuneCount(chunk) > c.config.Large.Size {
			var head string
			head, chunk = encoding.SplitAt(chunk, c.config.Large.Size)
			chunks = append(chunks, strings.TrimSpace(head))
		}
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok {
			flush()
			title := nodeText(heading, source)
			if title != "" {
				section = append(section, strings.Repeat("#", heading.Level)+" "+title)
			}
			continue
		}
		if body := nodeText(node, source); body != "" {
			section = append(section, body)
		}
	}
	flush()
	return chunks
}

// nodeText collects the plain text under an AST node.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Text(source))
		case *ast.String:
			buf.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
