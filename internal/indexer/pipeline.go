package indexer

import (
	"context"
	"fmt"

	"docsrag/internal/contextutil"
	"docsrag/internal/fetcher"
	"docsrag/internal/vectorstore"
)

// DocumentFetcher retrieves documents in input order.
type DocumentFetcher interface {
	FetchAll(ctx context.Context, urls []string) ([]fetcher.Document, error)
}

// StoreOpener connects to the vector store.
type StoreOpener func(ctx context.Context) (vectorstore.Store, error)

// FollowUp runs against the open store after a successful upload.
type FollowUp func(ctx context.Context, store vectorstore.Store) error

// Report summarizes an ingestion run.
type Report struct {
	Documents  int
	Chunks     int
	Uploaded   int
	Total      int
	TokenStats ChunkTokenStats
}

// Pipeline runs fetch, chunk, schema reset and upload, strictly in that order.
// The store is opened after chunking and closed before Run returns.
type Pipeline struct {
	fetcher  DocumentFetcher
	chunker  *Chunker
	open     StoreOpener
	schema   vectorstore.CollectionSchema
	followUp FollowUp
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFollowUp registers a step that runs on the same connection after the upload.
func WithFollowUp(f FollowUp) Option {
	return func(p *Pipeline) {
		p.followUp = f
	}
}

// NewPipeline creates an ingestion pipeline that writes into the collection described by schema.
func NewPipeline(f DocumentFetcher, chunker *Chunker, open StoreOpener, schema vectorstore.CollectionSchema, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		chunker: chunker,
		open:    open,
		schema:  schema,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests urls. Any stage failure aborts the run; nothing already written is rolled back.
func (p *Pipeline) Run(ctx context.Context, urls []string) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var report Report

	logger.InfoContext(ctx, "fetching documents", "count", len(urls))
	docs, err := p.fetcher.FetchAll(ctx, urls)
	if err != nil {
		return report, fmt.Errorf("failed to fetch documents: %w", err)
	}
	report.Documents = len(docs)

	chunks := p.chunker.ChunkDocuments(docs)
	report.Chunks = len(chunks)
	report.TokenStats = chunkTokenStats(p.chunker.tokenizer, chunks)
	logger.InfoContext(ctx, "split documents",
		"documents", len(docs),
		"chunks", len(chunks),
		"max_tokens", p.chunker.MaxTokens(),
		"tokens_max", report.TokenStats.Max,
		"tokens_p95", report.TokenStats.P95,
	)

	store, err := p.open(ctx)
	if err != nil {
		return report, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.WarnContext(ctx, "failed to close vector store", "error", cerr)
		}
	}()

	if err := NewSchemaManager(store).EnsureFreshCollection(ctx, p.schema); err != nil {
		return report, err
	}

	result, err := NewUploader(store).Upload(ctx, p.schema.Name, chunks)
	if err != nil {
		return report, err
	}
	report.Uploaded = result.Uploaded
	report.Total = result.Total

	if p.followUp != nil {
		if err := p.followUp(ctx, store); err != nil {
			return report, err
		}
	}
	return report, nil
}
