package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// embedBatchSize is the number of texts sent per embeddings request.
const embedBatchSize = 64

// EmbeddingsClient embeds text through an OpenAI-compatible embeddings API.
// Every vector it returns is checked against ExpectedSize.
type EmbeddingsClient struct {
	Model        string
	ExpectedSize int
	embedder     embeddings.Embedder
}

// NewEmbeddingsClient creates an embeddings client. An empty baseURL means the OpenAI default.
// expectedSize is the vector size the store was created with (EMBEDDING_DIMENSIONS).
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) (*EmbeddingsClient, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(embedBatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &EmbeddingsClient{
		Model:        model,
		ExpectedSize: expectedSize,
		embedder:     embedder,
	}, nil
}

// EmbedDocuments returns one vector per text, in input order.
func (c *EmbeddingsClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	for i, vec := range vectors {
		if err := c.checkSize(vec); err != nil {
			return nil, fmt.Errorf("embedding %d: %w", i, err)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query text.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := c.checkSize(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *EmbeddingsClient) checkSize(vec []float32) error {
	if c.ExpectedSize > 0 && len(vec) != c.ExpectedSize {
		return fmt.Errorf("embedding has size %d, expected %d", len(vec), c.ExpectedSize)
	}
	return nil
}
