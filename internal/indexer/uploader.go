package indexer

import (
	"context"
	"fmt"

	"docsrag/internal/contextutil"
	"docsrag/internal/vectorstore"
)

// UploadResult reports what an upload wrote and what the store holds afterwards.
type UploadResult struct {
	Uploaded int // Chunks sent to the store
	Total    int // Objects counted in the collection after the upload
}

// Uploader writes chunks to a collection and verifies the stored count.
type Uploader struct {
	store vectorstore.Store
}

// NewUploader creates an uploader for store.
func NewUploader(store vectorstore.Store) *Uploader {
	return &Uploader{store: store}
}

// Upload inserts every chunk and then counts the collection. Batching is left to the store.
func (u *Uploader) Upload(ctx context.Context, collection string, chunks []Chunk) (UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) > 0 {
		records := make([]vectorstore.Record, len(chunks))
		for i, c := range chunks {
			records[i] = c.Record()
		}
		if err := u.store.Insert(ctx, collection, records); err != nil {
			return UploadResult{}, fmt.Errorf("failed to upload chunks: %w", err)
		}
	}
	logger.InfoContext(ctx, "uploaded chunks", "collection", collection, "count", len(chunks))

	total, err := u.store.Count(ctx, collection)
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to count collection: %w", err)
	}
	if total != len(chunks) {
		logger.WarnContext(ctx, "collection count differs from uploaded chunks", "collection", collection, "uploaded", len(chunks), "total", total)
	}
	logger.InfoContext(ctx, "total objects in collection", "collection", collection, "total", total)

	return UploadResult{Uploaded: len(chunks), Total: total}, nil
}
