//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package encoding provides charset detection and UTF-8 normalization for
// extracted document text.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Charset represents a detected text encoding.
type Charset string

// Charset constants.
const (
	CharsetUTF8     Charset = "UTF-8"
	CharsetGBK      Charset = "GBK"
	CharsetBig5     Charset = "Big5"
	CharsetShiftJIS Charset = "Shift_JIS"
	CharsetEUCKR    Charset = "EUC-KR"
	CharsetWindows  Charset = "Windows-1252"
	CharsetUnknown  Charset = "Unknown"
)

// Detect guesses the charset of raw text by byte patterns. Valid UTF-8 always
// wins; the double-byte checks only run on invalid input.
func Detect(text string) Charset {
	if text == "" || utf8.ValidString(text) {
		return CharsetUTF8
	}
	b := []byte(text)
	switch {
	case isLikelyGBK(b):
		return CharsetGBK
	case isLikelyBig5(b):
		return CharsetBig5
	case isLikelyShiftJIS(b):
		return CharsetShiftJIS
	case isLikelyEUCKR(b):
		return CharsetEUCKR
	default:
		return CharsetUnknown
	}
}

// NormalizeUTF8 returns the text as valid UTF-8, converting from the detected
// charset when necessary. Text that cannot be decoded is scrubbed of invalid
// sequences instead of rejected: extraction should degrade, not fail.
func NormalizeUTF8(text string) string {
	cs := Detect(text)
	if cs == CharsetUTF8 {
		return ScrubUTF8(text)
	}
	converted, err := convertToUTF8(text, cs)
	if err != nil {
		return ScrubUTF8(text)
	}
	return converted
}

// ScrubUTF8 drops invalid UTF-8 sequences from text.
func ScrubUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	var b bytes.Buffer
	b.Grow(len(text))
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			text = text[1:]
			continue
		}
		b.WriteRune(r)
		text = text[size:]
	}
	return b.String()
}

func isLikelyGBK(b []byte) bool {
	valid, total := 0, 0
	for i := 0; i < len(b)-1; i++ {
		if b[i] >= 0x81 && b[i] <= 0xFE {
			total++
			next := b[i+1]
			if (next >= 0x40 && next <= 0x7E) || (next >= 0x80 && next <= 0xFE) {
				valid++
			}
		}
	}
	return total >= 2 && valid >= 2 && float64(valid)/float64(total) > 0.8
}

func isLikelyBig5(b []byte) bool {
	valid, total := 0, 0
	for i := 0; i < len(b)-1; i++ {
		if b[i] >= 0xA1 && b[i] <= 0xFE {
			total++
			next := b[i+1]
			if (next >= 0x40 && next <= 0x7E) || (next >= 0xA1 && next <= 0xFE) {
				valid++
			}
		}
	}
	return total >= 2 && valid >= 2 && float64(valid)/float64(total) > 0.8
}

func isLikelyShiftJIS(b []byte) bool {
	for i := 0; i < len(b)-1; i++ {
		if (b[i] >= 0x81 && b[i] <= 0x9F) || (b[i] >= 0xE0 && b[i] <= 0xEF) {
			next := b[i+1]
			if (next >= 0x40 && next <= 0x7E) || (next >= 0x80 && next <= 0xFC) {
				return true
			}
		}
	}
	return false
}

func isLikelyEUCKR(b []byte) bool {
	for i := 0; i < len(b)-1; i++ {
		if b[i] >= 0xA1 && b[i] <= 0xFE && b[i+1] >= 0xA1 && b[i+1] <= 0xFE {
			return true
		}
	}
	return false
}

func convertToUTF8(text string, from Charset) (string, error) {
	var enc encoding.Encoding
	switch from {
	case CharsetGBK:
		enc = simplifiedchinese.GBK
	case CharsetBig5:
		enc = traditionalchinese.Big5
	case CharsetShiftJIS:
		enc = japanese.ShiftJIS
	case CharsetEUCKR:
		enc = korean.EUCKR
	case CharsetWindows:
		enc = charmap.Windows1252
	default:
		return text, fmt.Errorf("unsupported charset: %s", from)
	}
	reader := transform.NewReader(bytes.NewReader([]byte(text)), enc.NewDecoder())
	converted, err := io.ReadAll(reader)
	if err != nil {
		return text, fmt.Errorf("convert from %s: %w", from, err)
	}
	return string(converted), nil
}
