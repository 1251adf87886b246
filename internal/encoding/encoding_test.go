//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDetectUTF8(t *testing.T) {
	assert.Equal(t, CharsetUTF8, Detect(""))
	assert.Equal(t, CharsetUTF8, Detect("plain ascii"))
	assert.Equal(t, CharsetUTF8, Detect("合同条款"))
}

func TestDetectGBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().String("甲方应当按月支付租金")
	assert.NoError(t, err)
	assert.Equal(t, CharsetGBK, Detect(raw))
}

func TestNormalizeUTF8ConvertsGBK(t *testing.T) {
	const want = "甲方应当按月支付租金"
	raw, err := simplifiedchinese.GBK.NewEncoder().String(want)
	assert.NoError(t, err)
	assert.Equal(t, want, NormalizeUTF8(raw))
}

func TestScrubUTF8(t *testing.T) {
	assert.Equal(t, "ab", ScrubUTF8("a\xffb"))
	assert.Equal(t, "clean", ScrubUTF8("clean"))
}

func TestSplitAt(t *testing.T) {
	left, right := SplitAt("甲方乙方", 2)
	assert.Equal(t, "甲方", left)
	assert.Equal(t, "乙方", right)

	left, right = SplitAt("ab", 0)
	assert.Equal(t, "", left)
	assert.Equal(t, "ab", right)

	left, right = SplitAt("ab", 10)
	assert.Equal(t, "ab", left)
	assert.Equal(t, "", right)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "乙方", Tail("甲方乙方", 2))
	assert.Equal(t, "abc", Tail("abc", 5))
	assert.Equal(t, "", Tail("abc", 0))
}
