package indexer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	// BPE ranks ship with the binary; no download at runtime.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Tokenizer counts tokens and locates token boundaries.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Boundaries returns the byte offsets at which each token of text ends, in order.
	// The last offset equals len(text).
	Boundaries(text string) []int
}

// TiktokenTokenizer implements Tokenizer with a tiktoken BPE encoding.
type TiktokenTokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktokenTokenizer loads the named encoding, e.g. "cl100k_base" or "gpt2".
func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{encoding: encoding, enc: enc}, nil
}

// Encoding returns the encoding name.
func (t *TiktokenTokenizer) Encoding() string {
	return t.encoding
}

// Count returns the number of tokens in text. Special-token text is encoded as ordinary text.
func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Boundaries returns token end offsets. Each token decodes to its exact bytes, so the
// running sum of decoded lengths gives the offsets.
func (t *TiktokenTokenizer) Boundaries(text string) []int {
	tokens := t.enc.Encode(text, nil, nil)
	ends := make([]int, len(tokens))
	off := 0
	for i, tok := range tokens {
		off += len(t.enc.Decode([]int{tok}))
		ends[i] = off
	}
	return ends
}
