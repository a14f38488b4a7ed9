package indexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTiktokenTokenizer(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base", tok.Encoding())

	_, err = NewTiktokenTokenizer("no_such_encoding")
	assert.Error(t, err)
}

func TestTiktokenTokenizer_Count(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	assert.Equal(t, 0, tok.Count(""))
	assert.Equal(t, 2, tok.Count("hello world"))
	assert.Greater(t, tok.Count(strings.Repeat("agent ", 50)), 40)
}

func TestTiktokenTokenizer_Boundaries(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	for _, text := range []string{"hello world", "état über 世界 🙂", "<|endoftext|> is plain text here"} {
		ends := tok.Boundaries(text)
		require.Len(t, ends, tok.Count(text), text)
		require.NotEmpty(t, ends)
		assert.Equal(t, len(text), ends[len(ends)-1], text)
		for i := 1; i < len(ends); i++ {
			assert.Greater(t, ends[i], ends[i-1], text)
		}
	}
}

func TestChunker_TiktokenProperties(t *testing.T) {
	tok, err := NewTiktokenTokenizer("cl100k_base")
	require.NoError(t, err)

	text := sampleText() + strings.Repeat("supercalifragilistic", 30)
	for _, maxTokens := range []int{8, 32, 200} {
		c, err := NewChunker(maxTokens, tok)
		require.NoError(t, err)

		chunks := c.Split(text)
		for i, chunk := range chunks {
			assert.LessOrEqual(t, tok.Count(chunk), maxTokens, "chunk %d: %q", i, chunk)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	}
}
