package query

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_service.go -package=mocks docsrag/internal/query Service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"docsrag/internal/contextutil"
	"docsrag/internal/vectorstore"
)

// ErrInvalidInput is returned for an empty query or a non-positive limit.
var ErrInvalidInput = errors.New("invalid input")

// DefaultTask is the grouped generative instruction used when none is given.
const DefaultTask = "Using only the documentation excerpts above, answer the question: %s"

// Service is the query surface used by the HTTP handlers.
type Service interface {
	Search(ctx context.Context, text string, limit int) ([]vectorstore.SearchResult, error)
	Ask(ctx context.Context, text, task string, limit int) (*vectorstore.Generation, error)
}

// Completer produces text for a prompt. It backs Ask on stores without a server-side generator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client runs similarity queries against one collection.
type Client struct {
	store      vectorstore.Store
	collection string
	completer  Completer
}

// NewClient creates a query client. completer may be nil.
func NewClient(store vectorstore.Store, collection string, completer Completer) *Client {
	return &Client{store: store, collection: collection, completer: completer}
}

// Search returns at most limit results ordered by non-increasing score.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]vectorstore.SearchResult, error) {
	if err := validate(text, limit); err != nil {
		return nil, err
	}

	results, err := c.store.NearText(ctx, c.collection, text, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.collection, err)
	}

	results = rank(results, limit)

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "query completed", "collection", c.collection, "limit", limit, "results", len(results))
	return results, nil
}

// Ask retrieves up to limit results and runs task over them as one group.
// An empty task asks the model to answer text. The store's own generator is preferred.
func (c *Client) Ask(ctx context.Context, text, task string, limit int) (*vectorstore.Generation, error) {
	if err := validate(text, limit); err != nil {
		return nil, err
	}
	if strings.TrimSpace(task) == "" {
		task = fmt.Sprintf(DefaultTask, text)
	}

	if gen, ok := c.store.(vectorstore.Generator); ok {
		out, err := gen.Generate(ctx, c.collection, text, task, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to generate answer: %w", err)
		}
		out.Sources = rank(out.Sources, limit)
		return out, nil
	}
	if c.completer == nil {
		return nil, vectorstore.ErrUnsupported
	}

	results, err := c.Search(ctx, text, limit)
	if err != nil {
		return nil, err
	}
	answer, err := c.completer.Complete(ctx, groupedPrompt(results, task))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return &vectorstore.Generation{Answer: answer, Sources: results}, nil
}

// rank orders results by non-increasing score, keeping store order for ties, and keeps at most limit.
func rank(results []vectorstore.SearchResult, limit int) []vectorstore.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func groupedPrompt(results []vectorstore.SearchResult, task string) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, r.Title, r.Source, r.Content)
	}
	b.WriteString(task)
	return b.String()
}

func validate(text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: query text is empty", ErrInvalidInput)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0, got %d", ErrInvalidInput, limit)
	}
	return nil
}
