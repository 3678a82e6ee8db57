package db

import (
	"context"
	"os"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsa-rag/internal/config"
	"dsa-rag/internal/corpus"
	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
	"dsa-rag/internal/retrieval"
)

func TestNewRow(t *testing.T) {
	e := embedding.Default()
	d := corpus.Fallback()[0]
	vec := e.Embed(d.Content)

	row := newRow(d, vec)
	assert.Equal(t, d.Content, row.Content)
	assert.Equal(t, "stack", row.Metadata[models.MetaTopic])
	assert.Equal(t, "1", row.Metadata[models.MetaPage])
	assert.Equal(t, []float32(vec), row.Embedding.Slice())
	assert.Zero(t, row.ID)
}

func TestNewRow_EmbeddingWireFormat(t *testing.T) {
	row := newRow(models.Document{Content: "x"}, embedding.Embedding{1, 0.5, -2})
	val, err := row.Embedding.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,0.5,-2]", val)

	var back pgvector.Vector
	require.NoError(t, back.Scan(val))
	assert.Equal(t, []float32{1, 0.5, -2}, back.Slice())
}

func TestConnectDB_RequiresDSN(t *testing.T) {
	_, err := ConnectDB(&config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestBackendImplementsRetriever(t *testing.T) {
	var _ retrieval.Retriever = (*Backend)(nil)
}

// Runs against a real pgvector instance when DATABASE_DSN is set.
func TestBackend_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		t.Skip("DATABASE_DSN not set")
	}
	ctx := context.Background()

	sqldb, err := ConnectDB(&config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	bunDB := NewDB(sqldb, false)
	b := New(bunDB, embedding.Default(), corpus.Fallback())
	defer b.Close()

	require.NoError(t, DropDocuments(ctx, bunDB))
	require.NoError(t, InitDB(ctx, bunDB))
	defer DropDocuments(ctx, bunDB)

	results := b.Search(ctx, "What is a stack?", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "stack", results[0].Metadata.Topic)

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(corpus.Fallback()), n)
}
