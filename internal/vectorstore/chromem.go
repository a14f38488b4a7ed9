package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"

	"docsrag/internal/contextutil"
)

// ChromemStore implements Store with an in-process chromem database.
// An empty path keeps everything in memory; otherwise collections persist as gob files under path.
type ChromemStore struct {
	db    *chromem.DB
	embed chromem.EmbeddingFunc

	mu      sync.RWMutex
	schemas map[string]CollectionSchema
}

// NewChromemStore opens a chromem database that vectorizes text through embedder.
func NewChromemStore(path string, embedder embeddings.Embedder) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("chromem store requires an embedder")
	}
	return NewChromemStoreWithFunc(path, func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	})
}

// NewChromemStoreWithFunc opens a chromem database with a raw embedding function.
func NewChromemStoreWithFunc(path string, embed chromem.EmbeddingFunc) (*ChromemStore, error) {
	db := chromem.NewDB()
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, &ConnectError{
				Backend: "chromem",
				Address: path,
				Err:     err,
				Hints: []string{
					"Check that CHROMEM_PATH is a writable directory",
					"Leave CHROMEM_PATH empty to keep the collection in memory",
				},
			}
		}
	}
	return &ChromemStore{
		db:      db,
		embed:   embed,
		schemas: make(map[string]CollectionSchema),
	}, nil
}

// CollectionExists checks if a collection exists.
func (s *ChromemStore) CollectionExists(_ context.Context, name string) (bool, error) {
	return s.db.GetCollection(name, s.embed) != nil, nil
}

// DeleteCollection removes a collection and its registered schema.
func (s *ChromemStore) DeleteCollection(_ context.Context, name string) error {
	if s.db.GetCollection(name, s.embed) == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	s.mu.Lock()
	delete(s.schemas, name)
	s.mu.Unlock()
	return nil
}

// CreateCollection creates a collection. The schema travels as collection metadata.
func (s *ChromemStore) CreateCollection(ctx context.Context, schema CollectionSchema) error {
	if s.db.GetCollection(schema.Name, s.embed) != nil {
		return fmt.Errorf("collection %s already exists", schema.Name)
	}

	metadata := map[string]string{
		"fields":           strings.Join(schema.PropertyNames(), ","),
		"embedding_model":  schema.EmbeddingModel,
		"generative_model": schema.GenerativeModel,
	}
	if _, err := s.db.CreateCollection(schema.Name, metadata, s.embed); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.mu.Lock()
	s.schemas[schema.Name] = schema
	s.mu.Unlock()

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "collection created", "collection", schema.Name, "fields", len(schema.Properties))
	return nil
}

// Schema returns the schema registered when the collection was created.
// Collections loaded from disk by a previous process have no registered schema.
func (s *ChromemStore) Schema(_ context.Context, name string) (*CollectionSchema, error) {
	if s.db.GetCollection(name, s.embed) == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	s.mu.RLock()
	schema, ok := s.schemas[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: schema of %s was not created by this process", ErrUnsupported, name)
	}
	return &schema, nil
}

// Insert adds records; chromem embeds them concurrently.
func (s *ChromemStore) Insert(ctx context.Context, collection string, records []Record) error {
	c := s.db.GetCollection(collection, s.embed)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		docs[i] = chromem.Document{
			ID:      uuid.NewString(),
			Content: r.Content,
			Metadata: map[string]string{
				FieldSource: r.Source,
				FieldTitle:  r.Title,
			},
		}
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *ChromemStore) Count(_ context.Context, collection string) (int, error) {
	c := s.db.GetCollection(collection, s.embed)
	if c == nil {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	return c.Count(), nil
}

// NearText runs a similarity query. limit is capped at the collection size.
func (s *ChromemStore) NearText(ctx context.Context, collection string, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	c := s.db.GetCollection(collection, s.embed)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	n := min(limit, c.Count())
	if n == 0 {
		return nil, nil
	}

	docs, err := c.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]SearchResult, len(docs))
	for i, d := range docs {
		results[i] = SearchResult{
			Record: Record{
				Content: d.Content,
				Source:  d.Metadata[FieldSource],
				Title:   d.Metadata[FieldTitle],
			},
			Score: d.Similarity,
		}
	}
	return results, nil
}

// Close is a no-op; persistent databases write through on every change.
func (s *ChromemStore) Close() error {
	return nil
}
