package vectorstore

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"docsrag/internal/config"
)

// Open creates the backend selected by cfg.VectorStore and checks that it is reachable.
// embedder is used by the backends that vectorize client-side and may be nil for Weaviate.
func Open(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (Store, error) {
	switch cfg.VectorStore {
	case config.StoreWeaviate:
		return newStore(NewWeaviateStore(ctx, WeaviateOptions{
			URL:          cfg.WeaviateURL,
			APIKey:       cfg.WeaviateAPIKey,
			OpenAIAPIKey: cfg.OpenAIAPIKey,
		}))
	case config.StoreQdrant:
		return newStore(NewQdrantStore(ctx, QdrantOptions{
			URL:            cfg.QdrantURL,
			APIKey:         cfg.QdrantAPIKey,
			VectorSize:     cfg.EmbeddingDimensions,
			EmbeddingModel: cfg.EmbeddingModel,
		}, embedder))
	case config.StoreChromem:
		return newStore(NewChromemStore(cfg.ChromemPath, embedder))
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}

// newStore drops the typed nil a failed constructor returns.
func newStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NeedsEmbedder reports whether the configured backend computes vectors client-side.
func NeedsEmbedder(cfg *config.Config) bool {
	return cfg.VectorStore != config.StoreWeaviate
}
