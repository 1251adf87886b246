//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	d := NewDecomposer()
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"two question marks", "Who is the lessor? What is the term?", true},
		{"question words with conjunction", "What is the rent and when is it due", true},
		{"question words with comma", "What is the deposit, who holds it", true},
		{"single question", "What is the termination clause?", false},
		{"no question at all", "thank you", false},
		{"two question words no conjunction", "What is what", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.query))
		})
	}
}

func TestSplitQuestionMarks(t *testing.T) {
	d := NewDecomposer()
	questions := d.Split("Who is X? What did Y do?")
	require.Len(t, questions, 2)

	assert.Equal(t, "Who is X?", questions[0].Text)
	assert.Equal(t, TypeWho, questions[0].Type)
	assert.Equal(t, 0, questions[0].Index)

	assert.Equal(t, "What did Y do?", questions[1].Text)
	assert.Equal(t, TypeWhat, questions[1].Type)
	assert.Equal(t, 1, questions[1].Index)
}

func TestSplitConjunctions(t *testing.T) {
	d := NewDecomposer()
	questions := d.Split("what is the rent and when is it due")
	require.Len(t, questions, 2)
	assert.Equal(t, "What is the rent?", questions[0].Text)
	assert.Equal(t, TypeWhat, questions[0].Type)
	assert.Equal(t, "When is it due?", questions[1].Text)
	assert.Equal(t, TypeWhen, questions[1].Type)
}

func TestSplitSingleQuestionIdempotent(t *testing.T) {
	d := NewDecomposer()
	questions := d.Split("What is the termination clause?")
	require.Len(t, questions, 1)
	assert.Equal(t, "What is the termination clause?", questions[0].Text)
	assert.Equal(t, 1.0, questions[0].Confidence)
}

func TestSplitConversationalMessage(t *testing.T) {
	// "thank you" carries no question word; the decomposer is deliberately
	// permissive and wraps it unchanged.
	d := NewDecomposer()
	questions := d.Split("thank you")
	require.Len(t, questions, 1)
	assert.Equal(t, "thank you", questions[0].Text)
	assert.Equal(t, TypeOther, questions[0].Type)
	assert.Equal(t, 1.0, questions[0].Confidence)
}

func TestSplitDropsShortFragments(t *testing.T) {
	d := NewDecomposer()
	questions := d.Split("Who is the guarantor? ok? What is the penalty?")
	require.Len(t, questions, 2)
	assert.Equal(t, "Who is the guarantor?", questions[0].Text)
	assert.Equal(t, "What is the penalty?", questions[1].Text)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Type
	}{
		{"Who signed it?", TypeWho},
		{"whom does it bind?", TypeWhom},
		{"Is the deposit refundable?", TypeIs},
		{"Are there penalties?", TypeIs},
		{"Does the lease renew?", TypeDoes},
		{"Did they agree?", TypeDoes},
		{"How long is the term?", TypeHow},
		{"Summarize the contract", TypeOther},
		{"", TypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text), "text %q", tt.text)
	}
}

func TestSplitNeverEmpty(t *testing.T) {
	d := NewDecomposer()
	for _, q := range []string{"", "??", "a? b?", "and and and"} {
		questions := d.Split(q)
		require.NotEmpty(t, questions, "query %q", q)
	}
}
