// Package main implements the docsrag CLI: ingest documentation into a vector store and query it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/embeddings"

	"docsrag/internal/config"
	"docsrag/internal/llm"
	"docsrag/internal/query"
	"docsrag/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// Similarity search over ingested documentation pages.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: docsrag API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

// errInMemoryStore rejects querying a chromem store that only lives for one process.
var errInMemoryStore = errors.New("CHROMEM_PATH is required to query the chromem backend: an in-memory store is empty in every new process")

var (
	// cfg is loaded once before any command runs and never mutated afterwards
	cfg     *config.Config
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docsrag",
	Short: "Ingest documentation into a vector store and query it",
	Long: `docsrag fetches documentation pages, splits them into token-bounded chunks,
uploads them to a vector database and answers similarity queries against them.

Configuration comes from the environment or a .env file (see OPENAI_API_KEY,
VECTOR_STORE, WEAVIATE_URL, QDRANT_URL, CHROMEM_PATH, COLLECTION_NAME, CHUNK_SIZE).`,
	Version:       version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupLogging(cmd.ErrOrStderr(), cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging installs the default slog handler. Logs go to w so that stdout carries only results.
func setupLogging(w io.Writer, cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

// newEmbedder returns the client-side embedder, or nil when the backend vectorizes server-side.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	if !vectorstore.NeedsEmbedder(cfg) {
		return nil, nil
	}
	client, err := llm.NewEmbeddingsClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newCompleter returns a completion model for backends without server-side generation.
func newCompleter(cfg *config.Config) (query.Completer, error) {
	if cfg.VectorStore == config.StoreWeaviate {
		return nil, nil
	}
	client, err := llm.NewCompletionClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.GenerativeModel)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openStore connects to the configured backend. Connection failures are logged with their hints.
func openStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.Open(ctx, cfg, embedder)
	if err != nil {
		var connectErr *vectorstore.ConnectError
		if errors.As(err, &connectErr) {
			slog.ErrorContext(ctx, "failed to connect to vector store", "backend", connectErr.Backend, "address", connectErr.Address, "error", connectErr.Err)
			for _, hint := range connectErr.Hints {
				slog.InfoContext(ctx, "hint: "+hint)
			}
		}
		return nil, err
	}
	slog.InfoContext(ctx, "connected to vector store", "backend", cfg.VectorStore)
	return store, nil
}

// openQueryClient opens the store and wraps it in a query client. The caller closes the store.
func openQueryClient(ctx context.Context, cfg *config.Config) (*query.Client, vectorstore.Store, error) {
	if cfg.VectorStore == config.StoreChromem && cfg.ChromemPath == "" {
		return nil, nil, errInMemoryStore
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	completer, err := newCompleter(cfg)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return query.NewClient(store, cfg.CollectionName, completer), store, nil
}

func closeStore(ctx context.Context, store vectorstore.Store) {
	if err := store.Close(); err != nil {
		slog.WarnContext(ctx, "failed to close vector store", "error", err)
	}
}
