package vectorstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterEmbedding is a deterministic letter-frequency vector with a constant bias
// dimension so that no text maps to the zero vector.
func letterEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 27)
	vec[26] = 1
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

func newTestChromem(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStoreWithFunc("", letterEmbedding)
	require.NoError(t, err)
	return store
}

func TestChromemStore_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	schema := DefaultSchema("Docs", "text-embedding-3-small", "")

	exists, err := store.CollectionExists(ctx, "Docs")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateCollection(ctx, schema))
	assert.Error(t, store.CreateCollection(ctx, schema), "creating twice must fail")

	exists, err = store.CollectionExists(ctx, "Docs")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.Schema(ctx, "Docs")
	require.NoError(t, err)
	assert.Equal(t, []string{FieldContent, FieldSource, FieldTitle}, got.PropertyNames())
	assert.Equal(t, "text-embedding-3-small", got.EmbeddingModel)

	require.NoError(t, store.DeleteCollection(ctx, "Docs"))
	exists, err = store.CollectionExists(ctx, "Docs")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Schema(ctx, "Docs")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestChromemStore_DeleteMissing(t *testing.T) {
	store := newTestChromem(t)
	err := store.DeleteCollection(context.Background(), "Missing")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestChromemStore_InsertCountNearText(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.CreateCollection(ctx, DefaultSchema("Docs", "m", "")))

	records := []Record{
		{Content: "aaaa aaaa", Source: "https://a.example", Title: "A"},
		{Content: "bbbb bbbb", Source: "https://b.example", Title: "B"},
		{Content: "aaab", Source: "https://ab.example", Title: "AB"},
	}
	require.NoError(t, store.Insert(ctx, "Docs", records))

	count, err := store.Count(ctx, "Docs")
	require.NoError(t, err)
	assert.Equal(t, len(records), count)

	results, err := store.NearText(ctx, "Docs", "aaaa", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.example", results[0].Source)
	assert.Equal(t, "A", results[0].Title)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	// limit above the collection size is capped rather than rejected
	results, err = store.NearText(ctx, "Docs", "bbbb", 10)
	require.NoError(t, err)
	assert.Len(t, results, len(records))
	assert.Equal(t, "B", results[0].Title)
}

func TestChromemStore_EmptyCollectionQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)
	require.NoError(t, store.CreateCollection(ctx, DefaultSchema("Docs", "m", "")))

	results, err := store.NearText(ctx, "Docs", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStore_MissingCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestChromem(t)

	assert.ErrorIs(t, store.Insert(ctx, "Missing", []Record{{Content: "x"}}), ErrCollectionNotFound)
	_, err := store.Count(ctx, "Missing")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	_, err = store.NearText(ctx, "Missing", "x", 1)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestChromemStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewChromemStoreWithFunc(dir, letterEmbedding)
	require.NoError(t, err)
	require.NoError(t, store.CreateCollection(ctx, DefaultSchema("Docs", "m", "")))
	require.NoError(t, store.Insert(ctx, "Docs", []Record{{Content: "persisted text", Source: "s", Title: "t"}}))
	require.NoError(t, store.Close())

	reopened, err := NewChromemStoreWithFunc(dir, letterEmbedding)
	require.NoError(t, err)

	count, err := reopened.Count(ctx, "Docs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// the schema registry does not survive a restart
	_, err = reopened.Schema(ctx, "Docs")
	assert.ErrorIs(t, err, ErrUnsupported)
}
