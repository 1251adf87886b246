//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package docqa

import (
	"fmt"
	"strings"
)

// systemInstructions frames the generation task: answer strictly from the
// provided excerpts and cite them with numbered markers.
const systemInstructions = `You are a legal document analyst. Answer the question using ONLY the document excerpts below.

Rules:
- Base every statement on the excerpts. If the excerpts do not contain the answer, say so plainly.
- Cite supporting excerpts inline with their bracketed numbers, e.g. [1] or [2][3].
- End the answer with a "Sources:" list mapping each cited number to its page, one per line, e.g. "[1] page 4".
- Do not invent pages, sections, or content that is not in the excerpts.`

const noContextNotice = "(no relevant excerpts were found in the document)"

// buildPrompt assembles the generation prompt from the packed document
// context and the question text.
func buildPrompt(docContext, question string) string {
	if strings.TrimSpace(docContext) == "" {
		docContext = noContextNotice
	}
	var sb strings.Builder
	sb.WriteString(systemInstructions)
	sb.WriteString("\n\nDocument excerpts:\n\n")
	sb.WriteString(docContext)
	fmt.Fprintf(&sb, "\n\nQuestion: %s\n\nAnswer:", question)
	return sb.String()
}
