package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// IndexVersion identifies an index build from the chunking rules and the embedding model.
// Two runs with the same version split and vectorize identical input the same way.
func IndexVersion(encoding, embeddingModel string, maxTokens int) string {
	input := fmt.Sprintf("%s|%s|%s|maxTokens=%d", ChunkerVersion, encoding, embeddingModel, maxTokens)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

func chunkTokenStats(tokenizer Tokenizer, chunks []Chunk) ChunkTokenStats {
	counts := make([]int, len(chunks))
	for i, c := range chunks {
		counts[i] = tokenizer.Count(c.Content)
	}
	return computeTokenStats(counts)
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
