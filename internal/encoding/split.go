//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package encoding

import "unicode/utf8"

// RuneCount returns the number of characters (runes) in the text.
func RuneCount(text string) int {
	return utf8.RuneCountInString(text)
}

// SplitAt splits text at a character position without breaking a UTF-8
// sequence. Positions are counted in runes, not bytes.
func SplitAt(text string, pos int) (string, string) {
	if pos <= 0 {
		return "", text
	}
	bytePos := runeToBytePos(text, pos)
	return text[:bytePos], text[bytePos:]
}

// Tail returns the last n characters of text. It is used to carry overlap
// between adjacent chunks.
func Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(text)
	if n >= count {
		return text
	}
	start := runeToBytePos(text, count-n)
	return text[start:]
}

// runeToBytePos converts a rune position to a byte offset, clamping to the
// end of the text.
func runeToBytePos(text string, pos int) int {
	bytePos := 0
	for i := 0; i < pos && bytePos < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[bytePos:])
		bytePos += size
	}
	return bytePos
}
