package indexer

import (
	"context"
	"fmt"

	"docsrag/internal/contextutil"
	"docsrag/internal/vectorstore"
)

// SchemaManager recreates the target collection before each ingestion run.
type SchemaManager struct {
	store vectorstore.Store
}

// NewSchemaManager creates a schema manager for store.
func NewSchemaManager(store vectorstore.Store) *SchemaManager {
	return &SchemaManager{store: store}
}

// EnsureFreshCollection deletes any collection named schema.Name and creates it again.
// Failing to check or delete is only reported; failing to create is an error.
func (m *SchemaManager) EnsureFreshCollection(ctx context.Context, schema vectorstore.CollectionSchema) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := m.store.CollectionExists(ctx, schema.Name)
	switch {
	case err != nil:
		logger.InfoContext(ctx, "could not check for existing collection", "collection", schema.Name, "error", err)
	case exists:
		if err := m.store.DeleteCollection(ctx, schema.Name); err != nil {
			logger.InfoContext(ctx, "could not delete existing collection", "collection", schema.Name, "error", err)
		} else {
			logger.InfoContext(ctx, "deleted existing collection", "collection", schema.Name)
		}
	}

	if err := m.store.CreateCollection(ctx, schema); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", schema.Name, err)
	}
	logger.InfoContext(ctx, "created collection", "collection", schema.Name, "fields", schema.PropertyNames())
	return nil
}
