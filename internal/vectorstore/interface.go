package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks docsrag/internal/vectorstore Store,Generator

import "context"

// Record is one stored chunk as seen by the store.
type Record struct {
	Content string
	Source  string
	Title   string
}

// SearchResult is a record returned by a similarity query.
type SearchResult struct {
	Record
	Score float32 // Higher is more similar
}

// Generation is the answer produced by a generative query plus the records it was grounded on.
type Generation struct {
	Answer  string
	Sources []SearchResult
}

// Store defines the operations the ingestion pipeline and query client need from a vector database.
// Implementations own vectorization: callers only ever pass text.
type Store interface {
	// CollectionExists reports whether a collection with the given name exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// DeleteCollection removes a collection and all of its records.
	DeleteCollection(ctx context.Context, name string) error

	// CreateCollection creates a collection with the given schema. It fails if the collection exists.
	CreateCollection(ctx context.Context, schema CollectionSchema) error

	// Schema returns the field layout of an existing collection.
	Schema(ctx context.Context, name string) (*CollectionSchema, error)

	// Insert writes records, batching as the backend sees fit.
	Insert(ctx context.Context, collection string, records []Record) error

	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// NearText returns up to limit records most similar to query.
	NearText(ctx context.Context, collection string, query string, limit int) ([]SearchResult, error)

	// Close releases the connection to the backend.
	Close() error
}

// Generator is implemented by stores that can run a generative model over query results.
type Generator interface {
	// Generate retrieves up to limit records near query and asks the configured model
	// to perform task over all of them at once.
	Generate(ctx context.Context, collection string, query string, task string, limit int) (*Generation, error)
}
