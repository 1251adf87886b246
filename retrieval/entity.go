//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package retrieval

import "regexp"

// entityPattern matches sequences of two or more capitalized words, the
// usual shape of names of parties, places, and defined terms.
var entityPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)

// maxEntities bounds the number of per-entity lookups for one query.
const maxEntities = 5

// extractEntities returns the distinct capitalized multi-word spans of the
// query, in order of first appearance.
func extractEntities(query string) []string {
	var entities []string
	seen := map[string]bool{}
	for _, m := range entityPattern.FindAllString(query, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		entities = append(entities, m)
		if len(entities) == maxEntities {
			break
		}
	}
	return entities
}
