package chromemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsa-rag/internal/corpus"
	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
	"dsa-rag/internal/retrieval"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newBackend(t *testing.T, fallback []models.Document) *Backend {
	t.Helper()
	b, err := New(Config{Path: t.TempDir(), Collection: "test-docs", InMemory: true, EncryptionKey: testKey}, embedding.Default(), fallback)
	require.NoError(t, err)
	return b
}

func TestBackend_SeedsFallbackOnFirstSearch(t *testing.T) {
	b := newBackend(t, corpus.Fallback())
	assert.Equal(t, 0, b.Count())

	results := b.Search(context.Background(), "What is a stack?", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "stack", results[0].Metadata.Topic)
	require.NotNil(t, results[0].Metadata.Page)
	assert.Equal(t, 1, *results[0].Metadata.Page)
	assert.Equal(t, len(corpus.Fallback()), b.Count())

	// seeding happens once
	b.Search(context.Background(), "queue", 1)
	assert.Equal(t, len(corpus.Fallback()), b.Count())
}

func TestBackend_IngestThenSearch(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, nil)
	require.NoError(t, b.Ingest(ctx, corpus.Fallback()[:4]))

	results := b.Search(ctx, "How does a queue work?", 10)
	require.Len(t, results, 4)
	assert.Equal(t, "queue", results[0].Metadata.Topic)
}

func TestBackend_DuplicatesAreKept(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, nil)
	docs := corpus.Fallback()[:1]
	require.NoError(t, b.Ingest(ctx, docs))
	require.NoError(t, b.Ingest(ctx, docs))
	assert.Equal(t, 2, b.Count())
}

func TestBackend_EmptyAndDegenerate(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, nil)
	assert.Empty(t, b.Search(ctx, "stack", 4))

	require.NoError(t, b.Ingest(ctx, []models.Document{{Content: "?!", Metadata: models.Metadata{Source: "x"}}}))
	assert.Equal(t, 0, b.Count())

	require.NoError(t, b.Ingest(ctx, corpus.Fallback()[:2]))
	assert.Empty(t, b.Search(ctx, "...", 4))
}

func TestBackend_ExportImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := Config{Path: dir, Collection: "export-docs", InMemory: true, EncryptionKey: testKey}

	src, err := New(cfg, embedding.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, src.Ingest(ctx, corpus.Fallback()))
	require.NoError(t, src.Export())

	dst, err := New(cfg, embedding.Default(), nil)
	require.NoError(t, err)
	require.NoError(t, dst.Import())
	assert.Equal(t, src.Count(), dst.Count())

	results := dst.Search(ctx, "merge sort", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "merge-sort", results[0].Metadata.Topic)
}

func TestBackend_ExportRequiresKey(t *testing.T) {
	b, err := New(Config{Path: t.TempDir(), Collection: "c", InMemory: true}, embedding.Default(), nil)
	require.NoError(t, err)
	assert.Error(t, b.Export())
}

func TestBackend_DeleteCollection(t *testing.T) {
	b := newBackend(t, nil)
	assert.NoError(t, b.DeleteCollection())
}

func TestBackendImplementsRetriever(t *testing.T) {
	var _ retrieval.Retriever = (*Backend)(nil)
}
