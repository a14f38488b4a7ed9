package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"docsrag/internal/vectorstore"
	"docsrag/internal/vectorstore/mocks"
)

func TestUploader_Upload(t *testing.T) {
	chunks := []Chunk{
		{Index: 0, Source: "s", Title: "t", Content: "one"},
		{Index: 1, Source: "s", Title: "t", Content: "two"},
	}
	records := []vectorstore.Record{
		{Content: "one", Source: "s", Title: "t"},
		{Content: "two", Source: "s", Title: "t"},
	}
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		chunks  []Chunk
		setup   func(m *mocks.MockStore)
		want    UploadResult
		wantErr bool
	}{
		{
			name:   "uploads and counts",
			chunks: chunks,
			setup: func(m *mocks.MockStore) {
				gomock.InOrder(
					m.EXPECT().Insert(gomock.Any(), "Docs", records).Return(nil),
					m.EXPECT().Count(gomock.Any(), "Docs").Return(2, nil),
				)
			},
			want: UploadResult{Uploaded: 2, Total: 2},
		},
		{
			name:   "count mismatch is reported, not fatal",
			chunks: chunks,
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Insert(gomock.Any(), "Docs", records).Return(nil)
				m.EXPECT().Count(gomock.Any(), "Docs").Return(5, nil)
			},
			want: UploadResult{Uploaded: 2, Total: 5},
		},
		{
			name:   "no chunks skips insert",
			chunks: nil,
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Count(gomock.Any(), "Docs").Return(0, nil)
			},
			want: UploadResult{},
		},
		{
			name:   "insert failure aborts",
			chunks: chunks,
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Insert(gomock.Any(), "Docs", records).Return(errBoom)
			},
			wantErr: true,
		},
		{
			name:   "count failure aborts",
			chunks: chunks,
			setup: func(m *mocks.MockStore) {
				m.EXPECT().Insert(gomock.Any(), "Docs", records).Return(nil)
				m.EXPECT().Count(gomock.Any(), "Docs").Return(0, errBoom)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockStore(ctrl)
			tt.setup(store)

			got, err := NewUploader(store).Upload(context.Background(), "Docs", tt.chunks)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
