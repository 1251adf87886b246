//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package query classifies user queries as single- or multi-question and
// splits multi-question queries into ordered discrete questions.
package query

import (
	"strings"
	"unicode"

	"trpc.group/trpc-go/trpc-docqa-go/log"
)

// Type is the inferred category of a question, derived from its first word.
type Type string

// Question type constants.
const (
	TypeWho   Type = "who"
	TypeWhat  Type = "what"
	TypeWhere Type = "where"
	TypeWhen  Type = "when"
	TypeWhy   Type = "why"
	TypeHow   Type = "how"
	TypeWhich Type = "which"
	TypeWhose Type = "whose"
	TypeWhom  Type = "whom"
	TypeIs    Type = "is"
	TypeDoes  Type = "does"
	TypeOther Type = "other"
)

// Question is a single question extracted from a possibly multi-question
// query.
type Question struct {
	// Text is the question text, including its trailing question mark.
	Text string
	// Index is the position of the question in the original query.
	Index int
	// Type is the inferred question category.
	Type Type
	// Confidence is the decomposer's confidence in this split.
	Confidence float64
}

// questionWords are the recognized question-starting words.
var questionWords = []string{
	"who", "what", "where", "when", "why", "how", "which", "whose", "whom",
	"is", "are", "was", "were", "does", "do", "did",
}

const (
	// minFragmentLen drops punctuation shards left by the ? split.
	minFragmentLen = 4
	// minQuestionLen drops questions too short to carry meaning.
	minQuestionLen = 5

	splitConfidenceMark        = 0.9
	splitConfidenceConjunction = 0.7
)

// Decomposer detects and splits multi-question queries. Detection is
// deliberately permissive: a query without question words (for example a
// bare "thank you") still comes back as exactly one Question, and the caller
// decides what to do with it.
type Decomposer struct{}

// NewDecomposer creates a Decomposer.
func NewDecomposer() *Decomposer {
	return &Decomposer{}
}

// Detect reports whether the query looks like it contains more than one
// question: more than one question mark, or more than one question word
// combined with a conjunction cue.
func (d *Decomposer) Detect(q string) bool {
	if strings.Count(q, "?") > 1 {
		return true
	}
	lower := strings.ToLower(q)
	if countQuestionWords(lower) > 1 &&
		(strings.Contains(lower, " and ") || strings.Contains(lower, ", ")) {
		return true
	}
	return false
}

// Split decomposes the query into ordered questions. It never returns an
// empty slice: when the query is not multi-question, or every splitting
// strategy comes up empty, the result is one Question wrapping the original
// text with confidence 1.0.
func (d *Decomposer) Split(q string) []Question {
	trimmed := strings.TrimSpace(q)
	if !d.Detect(trimmed) {
		return []Question{singleQuestion(trimmed)}
	}

	questions := d.splitOnQuestionMarks(trimmed)
	if len(questions) == 0 {
		questions = d.splitOnConjunctions(trimmed)
	}
	questions = filterQuestions(questions)
	if len(questions) == 0 {
		return []Question{singleQuestion(trimmed)}
	}

	for i := range questions {
		questions[i].Index = i
		questions[i].Type = Classify(questions[i].Text)
	}
	log.Debugf("decomposed query into %d questions", len(questions))
	return questions
}

// splitOnQuestionMarks splits at ? boundaries, keeping the mark attached to
// each preceding segment.
func (d *Decomposer) splitOnQuestionMarks(q string) []Question {
	if !strings.Contains(q, "?") {
		return nil
	}
	var questions []Question
	for _, seg := range strings.Split(q, "?") {
		seg = strings.TrimSpace(seg)
		if len([]rune(seg)) < minFragmentLen {
			continue
		}
		questions = append(questions, Question{
			Text:       seg + "?",
			Confidence: splitConfidenceMark,
		})
	}
	return questions
}

// splitOnConjunctions splits at conjunction and semicolon boundaries and
// keeps only segments that start with a question word.
func (d *Decomposer) splitOnConjunctions(q string) []Question {
	segments := []string{q}
	for _, sep := range []string{" and ", "; ", ", "} {
		var next []string
		for _, seg := range segments {
			next = append(next, strings.Split(seg, sep)...)
		}
		segments = next
	}

	var questions []Question
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || !startsWithQuestionWord(seg) {
			continue
		}
		seg = capitalize(seg)
		if !strings.HasSuffix(seg, "?") {
			seg += "?"
		}
		questions = append(questions, Question{
			Text:       seg,
			Confidence: splitConfidenceConjunction,
		})
	}
	return questions
}

// filterQuestions drops questions that are too short or contain no
// recognized question word.
func filterQuestions(questions []Question) []Question {
	var kept []Question
	for _, q := range questions {
		if len([]rune(q.Text)) < minQuestionLen {
			continue
		}
		if !containsQuestionWord(strings.ToLower(q.Text)) {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

func singleQuestion(text string) Question {
	return Question{
		Text:       text,
		Index:      0,
		Type:       Classify(text),
		Confidence: 1.0,
	}
}

// Classify returns the question type based on the first word.
func Classify(text string) Type {
	first := firstWord(strings.ToLower(strings.TrimSpace(text)))
	switch first {
	case "who", "what", "where", "when", "why", "how", "which", "whose", "whom":
		return Type(first)
	case "is", "are", "was", "were":
		return TypeIs
	case "does", "do", "did":
		return TypeDoes
	default:
		return TypeOther
	}
}

func firstWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '?' || r == '!'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func startsWithQuestionWord(s string) bool {
	first := firstWord(strings.ToLower(s))
	for _, w := range questionWords {
		if first == w {
			return true
		}
	}
	return false
}

func containsQuestionWord(lower string) bool {
	for _, w := range wordsOf(lower) {
		for _, qw := range questionWords {
			if w == qw {
				return true
			}
		}
	}
	return false
}

func countQuestionWords(lower string) int {
	count := 0
	for _, w := range wordsOf(lower) {
		for _, qw := range questionWords {
			if w == qw {
				count++
				break
			}
		}
	}
	return count
}

func wordsOf(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
