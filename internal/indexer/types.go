package indexer

import "docsrag/internal/vectorstore"

// Chunk is a token-bounded slice of a fetched document.
type Chunk struct {
	Index   int    // Position across all chunks of a run (starts at 0)
	Source  string // URL of the parent document
	Title   string // Parent title, or "Document <Index>" when it had none
	Content string
}

// Record converts the chunk to the store representation.
func (c Chunk) Record() vectorstore.Record {
	return vectorstore.Record{
		Content: c.Content,
		Source:  c.Source,
		Title:   c.Title,
	}
}
