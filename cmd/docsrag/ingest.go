package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"docsrag/internal/fetcher"
	"docsrag/internal/indexer"
	"docsrag/internal/query"
	"docsrag/internal/sources"
	"docsrag/internal/vectorstore"
)

// ExampleQuery is run after ingestion unless --no-query is set.
const ExampleQuery = "How do I create a multi-agent system?"

var (
	ingestSources string
	ingestNoQuery bool
	ingestQuery   string
	ingestLimit   int
)

func init() {
	ingestCmd.Flags().StringVar(&ingestSources, "sources", "", "YAML file with a urls list (defaults to the built-in LangGraph pages)")
	ingestCmd.Flags().BoolVar(&ingestNoQuery, "no-query", false, "Skip the example query after upload")
	ingestCmd.Flags().StringVar(&ingestQuery, "query", ExampleQuery, "Query to run after upload")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 5, "Maximum number of results for the example query")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, chunk and upload the documentation pages",
	Long: `Fetch every source page, split it into chunks of at most CHUNK_SIZE tokens,
recreate the collection and upload all chunks, then print the object count and
the results of an example query.

Examples:
  # Ingest the built-in page list
  docsrag ingest

  # Ingest pages listed in a file, without the example query
  docsrag ingest --sources pages.yaml --no-query`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	urls := sources.Default()
	if ingestSources != "" {
		var err error
		if urls, err = sources.LoadFile(ingestSources); err != nil {
			return err
		}
	}

	tokenizer, err := indexer.NewTiktokenTokenizer(cfg.ChunkEncoding)
	if err != nil {
		return err
	}
	chunker, err := indexer.NewChunker(cfg.ChunkSize, tokenizer)
	if err != nil {
		return err
	}

	var opts []indexer.Option
	if !ingestNoQuery {
		opts = append(opts, indexer.WithFollowUp(func(ctx context.Context, store vectorstore.Store) error {
			results, err := query.NewClient(store, cfg.CollectionName, nil).Search(ctx, ingestQuery, ingestLimit)
			if err != nil {
				return err
			}
			query.Print(cmd.OutOrStdout(), ingestQuery, results)
			return nil
		}))
	}

	pipeline := indexer.NewPipeline(
		fetcher.New(cfg.FetchTimeout),
		chunker,
		func(ctx context.Context) (vectorstore.Store, error) { return openStore(ctx, cfg) },
		vectorstore.DefaultSchema(cfg.CollectionName, cfg.EmbeddingModel, cfg.GenerativeModel),
		opts...,
	)

	report, err := pipeline.Run(ctx, urls)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	slog.InfoContext(ctx, "ingestion complete",
		"collection", cfg.CollectionName,
		"documents", report.Documents,
		"chunks", report.Chunks,
		"uploaded", report.Uploaded,
		"total", report.Total,
		"tokens_mean", report.TokenStats.Mean,
		"index_version", indexer.IndexVersion(tokenizer.Encoding(), cfg.EmbeddingModel, cfg.ChunkSize),
	)
	return nil
}
