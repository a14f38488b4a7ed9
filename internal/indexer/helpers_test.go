package indexer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordTokenizer treats each run of non-space runes and each space rune as one token.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int {
	return len(wordTokenizer{}.Boundaries(text))
}

func (wordTokenizer) Boundaries(text string) []int {
	var ends []int
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				ends = append(ends, i)
				inWord = false
			}
			ends = append(ends, i+utf8.RuneLen(r))
			continue
		}
		inWord = true
	}
	if inWord {
		ends = append(ends, len(text))
	}
	return ends
}

// runeTokenizer treats every rune as a token.
type runeTokenizer struct{}

func (runeTokenizer) Count(text string) int {
	return utf8.RuneCountInString(text)
}

func (runeTokenizer) Boundaries(text string) []int {
	ends := make([]int, 0, len(text))
	for i, r := range text {
		ends = append(ends, i+utf8.RuneLen(r))
	}
	return ends
}

// byteTokenizer treats every byte as a token, so most boundaries of multi-byte text fall inside runes.
type byteTokenizer struct{}

func (byteTokenizer) Count(text string) int {
	return len(text)
}

func (byteTokenizer) Boundaries(text string) []int {
	ends := make([]int, len(text))
	for i := range text {
		ends[i] = i + 1
	}
	return ends
}

// letterEmbedding is a deterministic letter-frequency vector with a bias dimension.
func letterEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 27)
	vec[26] = 1
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}
