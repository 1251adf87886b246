//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package document provides passage construction helpers.
package document

import (
	"fmt"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-docqa-go/document"
)

// CreatePassage creates a passage of the given granularity.
func CreatePassage(content string, page int, chunkType document.ChunkType, docID string, seq int) *document.Passage {
	return &document.Passage{
		ID:         GeneratePassageID(docID, chunkType, seq),
		Content:    content,
		Page:       page,
		Type:       chunkType,
		DocumentID: docID,
	}
}

// GeneratePassageID generates a unique ID for a passage. The ID embeds the
// granularity and a sequence number so the same span produced by different
// passes never collides.
func GeneratePassageID(docID string, chunkType document.ChunkType, seq int) string {
	return fmt.Sprintf("%s-%s-%d", docID, chunkType, seq)
}

// GenerateDocumentID generates a unique ID for a document.
func GenerateDocumentID() string {
	return uuid.NewString()
}
