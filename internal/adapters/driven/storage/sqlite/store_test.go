package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

const testModel = "test-embed"

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// embeddedChunk builds a stored chunk with the given vector.
func embeddedChunk(id, path, text string, position int, vector []float32) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk: domain.Chunk{
			ID:           id,
			DocumentPath: path,
			StartOffset:  position * 100,
			EndOffset:    position*100 + len(text),
			Position:     position,
			Text:         text,
			ContentHash:  domain.HashText(text),
		},
		Vector: vector,
	}
}

func TestReplaceDocument_InsertAndQuery(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-a", []domain.EmbeddedChunk{
		embeddedChunk("c1", "notes/a.md", "first chunk", 0, []float32{1, 0}),
		embeddedChunk("c2", "notes/a.md", "second chunk", 1, []float32{0, 1}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, "notes/a.md", results[0].DocumentPath)
	assert.Equal(t, "first chunk", results[0].Chunk.Text)
}

func TestReplaceDocument_ReplacesOldRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-v1", []domain.EmbeddedChunk{
		embeddedChunk("old1", "notes/a.md", "old one", 0, []float32{1, 0}),
		embeddedChunk("old2", "notes/a.md", "old two", 1, []float32{1, 0}),
		embeddedChunk("old3", "notes/a.md", "old three", 2, []float32{1, 0}),
	})
	require.NoError(t, err)

	err = vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-v2", []domain.EmbeddedChunk{
		embeddedChunk("new1", "notes/a.md", "new one", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new1", results[0].Chunk.ID)

	hashes, err := store.IndexStateStore().IndexedHashes(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"notes/a.md": "hash-v2"}, hashes)
}

func TestReplaceDocument_EmptyChunksStillRecordsHash(t *testing.T) {
	// A document whose content yields no chunks (all whitespace) is
	// still marked indexed so it is not rescanned every run.
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/empty.md", testModel, "hash-e", nil)
	require.NoError(t, err)

	hashes, err := store.IndexStateStore().IndexedHashes(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, "hash-e", hashes["notes/empty.md"])

	stats, err := vs.Stats(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 0, stats.Chunks)
}

func TestDeleteDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-a", []domain.EmbeddedChunk{
		embeddedChunk("c1", "notes/a.md", "chunk", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	require.NoError(t, vs.DeleteDocument(ctx, "notes/a.md", testModel))

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)

	hashes, err := store.IndexStateStore().IndexedHashes(ctx, testModel)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestQuery_RankingAndTieBreaks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	// Two identical-similarity chunks with different text lengths, one
	// lower-similarity chunk.
	err := vs.ReplaceDocument(ctx, "notes/b.md", testModel, "hash-b", []domain.EmbeddedChunk{
		embeddedChunk("longer", "notes/b.md", "a much longer chunk of text", 0, []float32{1, 0}),
		embeddedChunk("weaker", "notes/b.md", "weak match", 1, []float32{1, 1}),
	})
	require.NoError(t, err)
	err = vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-a", []domain.EmbeddedChunk{
		embeddedChunk("shorter", "notes/a.md", "short text", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Ties by similarity break toward the shorter chunk text.
	assert.Equal(t, "shorter", results[0].Chunk.ID)
	assert.Equal(t, "longer", results[1].Chunk.ID)
	assert.Equal(t, "weaker", results[2].Chunk.ID)
}

func TestQuery_TieBreakByPath(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	// Same similarity, same text length: path decides.
	err := vs.ReplaceDocument(ctx, "notes/zzz.md", testModel, "h1", []domain.EmbeddedChunk{
		embeddedChunk("z", "notes/zzz.md", "same text", 0, []float32{1, 0}),
	})
	require.NoError(t, err)
	err = vs.ReplaceDocument(ctx, "notes/aaa.md", testModel, "h2", []domain.EmbeddedChunk{
		embeddedChunk("a", "notes/aaa.md", "same text", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "notes/aaa.md", results[0].DocumentPath)
	assert.Equal(t, "notes/zzz.md", results[1].DocumentPath)
}

func TestQuery_MinSimilarity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-a", []domain.EmbeddedChunk{
		embeddedChunk("strong", "notes/a.md", "strong", 0, []float32{1, 0}),
		embeddedChunk("weak", "notes/a.md", "weak", 1, []float32{0, 1}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{
		Limit:         10,
		MinSimilarity: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "strong", results[0].Chunk.ID)
}

func TestQuery_DimensionMismatchExcluded(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "hash-a", []domain.EmbeddedChunk{
		embeddedChunk("2d", "notes/a.md", "two dims", 0, []float32{1, 0}),
		embeddedChunk("3d", "notes/a.md", "three dims", 1, []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2d", results[0].Chunk.ID)
}

func TestQuery_PathFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	for i, path := range []string{"notes/a.md", "notes/b.md", "archive/c.md"} {
		err := vs.ReplaceDocument(ctx, path, testModel, fmt.Sprintf("h%d", i), []domain.EmbeddedChunk{
			embeddedChunk(fmt.Sprintf("c%d", i), path, fmt.Sprintf("chunk %d", i), 0, []float32{1, 0}),
		})
		require.NoError(t, err)
	}

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{
		Limit:           10,
		IncludePatterns: []string{"notes/**"},
		ExcludePatterns: []string{"notes/b.md"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes/a.md", results[0].DocumentPath)
}

func TestQuery_Limit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	var chunks []domain.EmbeddedChunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, embeddedChunk(
			fmt.Sprintf("c%d", i), "notes/a.md", fmt.Sprintf("chunk number %d", i), i, []float32{1, 0}))
	}
	require.NoError(t, vs.ReplaceDocument(ctx, "notes/a.md", testModel, "h", chunks))

	results, err := vs.Query(ctx, []float32{1, 0}, testModel, domain.QueryOptions{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestQuery_EmptyVector(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.VectorStore().Query(context.Background(), nil, testModel, domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuery_ModelNamespacing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", "model-a", "hash", []domain.EmbeddedChunk{
		embeddedChunk("c1", "notes/a.md", "chunk", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := vs.Query(ctx, []float32{1, 0}, "model-b", domain.QueryOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)

	hashes, err := store.IndexStateStore().IndexedHashes(ctx, "model-b")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	vs := store.VectorStore()

	err := vs.ReplaceDocument(ctx, "notes/a.md", testModel, "ha", []domain.EmbeddedChunk{
		embeddedChunk("c1", "notes/a.md", "one", 0, []float32{1, 0}),
		embeddedChunk("c2", "notes/a.md", "two", 1, []float32{0, 1}),
	})
	require.NoError(t, err)
	err = vs.ReplaceDocument(ctx, "notes/b.md", testModel, "hb", []domain.EmbeddedChunk{
		embeddedChunk("c3", "notes/b.md", "three", 0, []float32{1, 1}),
	})
	require.NoError(t, err)

	stats, err := vs.Stats(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Chunks)
}

func TestEmbeddingCache(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	cache := store.EmbeddingCache()

	_, ok, err := cache.Get(ctx, "hash-x", testModel)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "hash-x", testModel, []float32{0.25, -0.5, 3}))

	vector, ok, err := cache.Get(ctx, "hash-x", testModel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, -0.5, 3}, vector)

	// Same hash, different model: separate entry.
	_, ok, err = cache.Get(ctx, "hash-x", "other-model")
	require.NoError(t, err)
	assert.False(t, ok)

	// Overwrite.
	require.NoError(t, cache.Put(ctx, "hash-x", testModel, []float32{9}))
	vector, ok, err = cache.Get(ctx, "hash-x", testModel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{9}, vector)
}

func TestPruneCache(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	cache := store.EmbeddingCache()

	require.NoError(t, cache.Put(ctx, "hash-a", testModel, []float32{1}))
	require.NoError(t, cache.Put(ctx, "hash-b", testModel, []float32{2}))
	require.NoError(t, cache.Put(ctx, "hash-a", "other-model", []float32{3}))

	pruned, err := store.PruneCache(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)

	_, ok, err := cache.Get(ctx, "hash-a", testModel)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other model namespaces are untouched.
	vector, ok, err := cache.Get(ctx, "hash-a", "other-model")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{3}, vector)
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	err = store.VectorStore().ReplaceDocument(ctx, "notes/a.md", testModel, "h", []domain.EmbeddedChunk{
		embeddedChunk("c1", "notes/a.md", "chunk", 0, []float32{1, 0}),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening re-runs migrations idempotently and keeps the data.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.VectorStore().Stats(ctx, testModel)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}

func TestFloat32Roundtrip(t *testing.T) {
	vector := []float32{0, 1.5, -2.25, 3.14159}
	assert.Equal(t, vector, bytesToFloat32Slice(float32SliceToBytes(vector)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
