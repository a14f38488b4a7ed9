package indexer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/mock/gomock"

	"docsrag/internal/vectorstore"
	"docsrag/internal/vectorstore/mocks"
)

func TestSchemaManager_EnsureFreshCollection(t *testing.T) {
	schema := vectorstore.DefaultSchema("Docs", "text-embedding-3-small", "")
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(m *mocks.MockStore)
		wantErr bool
	}{
		{
			name: "missing collection is created",
			setup: func(m *mocks.MockStore) {
				gomock.InOrder(
					m.EXPECT().CollectionExists(gomock.Any(), "Docs").Return(false, nil),
					m.EXPECT().CreateCollection(gomock.Any(), schema).Return(nil),
				)
			},
		},
		{
			name: "existing collection is deleted first",
			setup: func(m *mocks.MockStore) {
				gomock.InOrder(
					m.EXPECT().CollectionExists(gomock.Any(), "Docs").Return(true, nil),
					m.EXPECT().DeleteCollection(gomock.Any(), "Docs").Return(nil),
					m.EXPECT().CreateCollection(gomock.Any(), schema).Return(nil),
				)
			},
		},
		{
			name: "delete failure is not fatal",
			setup: func(m *mocks.MockStore) {
				gomock.InOrder(
					m.EXPECT().CollectionExists(gomock.Any(), "Docs").Return(true, nil),
					m.EXPECT().DeleteCollection(gomock.Any(), "Docs").Return(vectorstore.ErrCollectionNotFound),
					m.EXPECT().CreateCollection(gomock.Any(), schema).Return(nil),
				)
			},
		},
		{
			name: "existence check failure is not fatal",
			setup: func(m *mocks.MockStore) {
				gomock.InOrder(
					m.EXPECT().CollectionExists(gomock.Any(), "Docs").Return(false, errBoom),
					m.EXPECT().CreateCollection(gomock.Any(), schema).Return(nil),
				)
			},
		},
		{
			name: "create failure is fatal",
			setup: func(m *mocks.MockStore) {
				m.EXPECT().CollectionExists(gomock.Any(), "Docs").Return(false, nil)
				m.EXPECT().CreateCollection(gomock.Any(), schema).Return(errBoom)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			tt.setup(store)

			err := NewSchemaManager(store).EnsureFreshCollection(context.Background(), schema)
			if (err != nil) != tt.wantErr {
				t.Errorf("EnsureFreshCollection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errBoom) {
				t.Errorf("EnsureFreshCollection() error = %v, want wrapped %v", err, errBoom)
			}
		})
	}
}

func TestSchemaManager_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, err := vectorstore.NewChromemStoreWithFunc("", letterEmbedding)
	if err != nil {
		t.Fatalf("NewChromemStoreWithFunc() error = %v", err)
	}
	schema := vectorstore.DefaultSchema("Docs", "text-embedding-3-small", "")
	manager := NewSchemaManager(store)

	if err := manager.EnsureFreshCollection(ctx, schema); err != nil {
		t.Fatalf("first EnsureFreshCollection() error = %v", err)
	}
	if err := store.Insert(ctx, "Docs", []vectorstore.Record{{Content: "stale"}}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	first, err := store.Schema(ctx, "Docs")
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}

	if err := manager.EnsureFreshCollection(ctx, schema); err != nil {
		t.Fatalf("second EnsureFreshCollection() error = %v", err)
	}
	second, err := store.Schema(ctx, "Docs")
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}

	if got, want := second.PropertyNames(), first.PropertyNames(); !slices.Equal(got, want) {
		t.Errorf("fields changed: %v, want %v", got, want)
	}
	count, err := store.Count(ctx, "Docs")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after recreation, want 0", count)
	}
}
