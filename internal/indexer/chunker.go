package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docsrag/internal/fetcher"
)

// ChunkerVersion identifies the splitting rules. Update it when boundaries change.
const ChunkerVersion = "v1.0"

// MinChunkTokens is the smallest supported budget. A single rune never needs more than four tokens.
const MinChunkTokens = 4

// separators are tried in order, coarsest first.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits text into pieces of at most maxTokens tokens with no overlap.
// Concatenating the pieces of a text in order gives back the text.
type Chunker struct {
	maxTokens int
	tokenizer Tokenizer
}

// NewChunker creates a chunker with the given token budget.
func NewChunker(maxTokens int, tokenizer Tokenizer) (*Chunker, error) {
	if maxTokens < MinChunkTokens {
		return nil, fmt.Errorf("chunk size must be at least %d tokens, got %d", MinChunkTokens, maxTokens)
	}
	if tokenizer == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	return &Chunker{maxTokens: maxTokens, tokenizer: tokenizer}, nil
}

// MaxTokens returns the token budget.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// ChunkDocuments splits every document and numbers the chunks across the whole run.
func (c *Chunker) ChunkDocuments(docs []fetcher.Document) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		for _, piece := range c.Split(doc.Content) {
			index := len(chunks)
			title := doc.Title
			if title == "" {
				title = fmt.Sprintf("Document %d", index)
			}
			chunks = append(chunks, Chunk{
				Index:   index,
				Source:  doc.Source,
				Title:   title,
				Content: piece,
			})
		}
	}
	return chunks
}

// Split returns the chunks of text. Paragraph, line, sentence and word boundaries are
// preferred in that order; a piece with no usable boundary is cut between tokens.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	return c.split(text, separators)
}

func (c *Chunker) fits(text string) bool {
	return c.tokenizer.Count(text) <= c.maxTokens
}

func (c *Chunker) split(text string, seps []string) []string {
	if c.fits(text) {
		return []string{text}
	}
	for i, sep := range seps {
		if strings.Contains(text, sep) {
			return c.merge(splitAfter(text, sep), seps[i+1:])
		}
	}
	return c.cut(text)
}

// merge packs consecutive pieces greedily. A piece that is too large on its own
// is split with the finer separators.
func (c *Chunker) merge(pieces []string, finer []string) []string {
	var out []string
	current := ""
	for _, p := range pieces {
		if c.fits(current + p) {
			current += p
			continue
		}
		if current != "" {
			out = append(out, current)
			current = ""
		}
		if c.fits(p) {
			current = p
			continue
		}
		out = append(out, c.split(p, finer)...)
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// cut splits text at token boundaries that are also rune boundaries, taking the
// longest prefix that fits each time.
func (c *Chunker) cut(text string) []string {
	var cuts []int
	for _, end := range c.tokenizer.Boundaries(text) {
		if end == len(text) || (end > 0 && end < len(text) && utf8.RuneStart(text[end])) {
			cuts = append(cuts, end)
		}
	}
	if len(cuts) == 0 || cuts[len(cuts)-1] != len(text) {
		cuts = append(cuts, len(text))
	}

	var out []string
	start, first := 0, 0
	for start < len(text) {
		// first is the smallest cut past start and is taken even when nothing larger fits
		best := first
		lo, hi := first+1, len(cuts)-1
		for lo <= hi {
			mid := (lo + hi) / 2
			if c.fits(text[start:cuts[mid]]) {
				best = mid
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
		out = append(out, text[start:cuts[best]])
		start = cuts[best]
		first = best + 1
	}
	return out
}

// splitAfter splits s after each sep, dropping empty trailing pieces.
func splitAfter(s, sep string) []string {
	parts := strings.SplitAfter(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
