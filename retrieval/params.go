//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package retrieval

// Retrieval width bounds.
const (
	maxTopK       = 24
	maxRerankTopN = 12

	defaultEntityTopK = 3
)

// Params sizes one retrieval pass.
type Params struct {
	// TopK is the result width requested from each retrieval strategy.
	TopK int
	// RerankTopN is the width of the final reranked list.
	RerankTopN int
	// EntityTopK is the per-entity lexical lookup width.
	EntityTopK int
}

// AdaptiveParams computes retrieval widths from document size and question
// count. Both inputs widen retrieval monotonically, up to fixed maxima:
// longer documents spread relevant text across more passages, and
// multi-question queries need coverage for every sub-question.
func AdaptiveParams(totalPages, numQuestions int) Params {
	base := 8
	switch {
	case totalPages > 100:
		base = 16
	case totalPages > 20:
		base = 12
	}
	if numQuestions < 1 {
		numQuestions = 1
	}

	topK := base + 4*(numQuestions-1)
	if topK > maxTopK {
		topK = maxTopK
	}
	rerankTopN := topK / 2
	if rerankTopN > maxRerankTopN {
		rerankTopN = maxRerankTopN
	}
	return Params{
		TopK:       topK,
		RerankTopN: rerankTopN,
		EntityTopK: defaultEntityTopK,
	}
}
