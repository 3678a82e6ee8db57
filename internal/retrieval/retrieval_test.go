package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsa-rag/internal/corpus"
	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
)

type failingSource struct{}

func (failingSource) Name() string { return "broken.pdf" }

func (failingSource) Load(context.Context) ([]models.Document, error) {
	return nil, errors.New("no such file")
}

type explodingEmbedder struct {
	*embedding.FeatureEmbedder
}

func (e explodingEmbedder) Embed(text string) embedding.Embedding {
	if text == "boom" {
		panic("embedding exploded")
	}
	return e.FeatureEmbedder.Embed(text)
}

func fourTopics() []models.Document {
	mk := func(page int, topic, content string) models.Document {
		return models.Document{Content: content, Metadata: models.Metadata{Source: "test", Page: models.PageOf(page), Topic: topic}}
	}
	return []models.Document{
		mk(1, "stack", "A stack is a linear data structure that follows the Last In First Out (LIFO) principle. Elements are added and removed from the same end, called the top of the stack. Common operations include push (add element), pop (remove element), and peek (view top element)."),
		mk(2, "queue", "A queue is a linear data structure that follows the First In First Out (FIFO) principle. Elements are added at the rear (enqueue) and removed from the front (dequeue). It's like a line of people waiting - first person in line gets served first."),
		mk(3, "array", "Arrays are data structures that store elements in contiguous memory locations. They provide constant time access to elements using indices. Arrays have fixed size in many programming languages."),
		mk(4, "linked-list", "Linked lists are dynamic data structures where elements (nodes) are stored in sequence, but not necessarily in contiguous memory. Each node contains data and a pointer to the next node."),
	}
}

func TestSearch_QueueScenario(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(embedding.Default(), failingSource{}, corpus.Fallback())
	require.NoError(t, e.Ingest(ctx, fourTopics()))

	results := e.Search(ctx, "How does a queue work?", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "queue", results[0].Metadata.Topic)
	assert.NotEqual(t, "queue", results[1].Metadata.Topic)
	// ingest happened first, so the fallback corpus was never loaded
	assert.Equal(t, 4, e.Len())
}

func TestSearch_FallbackOnFreshEngine(t *testing.T) {
	e := NewEngine(embedding.Default(), failingSource{}, corpus.Fallback())

	results := e.Search(context.Background(), "What is a stack?", 0)
	require.NotEmpty(t, results)
	assert.Len(t, results, models.DefaultTopK)
	assert.Equal(t, "stack", results[0].Metadata.Topic)
	assert.Equal(t, len(corpus.Fallback()), e.Len())
}

func TestSearch_NoDocumentsNoFallback(t *testing.T) {
	e := NewEngine(embedding.Default(), failingSource{}, nil)

	results := e.Search(context.Background(), "What is a stack?", 3)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_ResultShape(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(embedding.Default(), nil, nil)
	require.NoError(t, e.Ingest(ctx, corpus.Fallback()))
	n := e.Len()

	for _, k := range []int{1, 3, n, n + 5} {
		scored := e.SearchWithScores(ctx, "sorting algorithm time complexity", k)
		assert.Len(t, scored, min(k, n))

		seen := make(map[string]bool)
		for i, s := range scored {
			assert.False(t, seen[s.Document.Content], "duplicate result")
			seen[s.Document.Content] = true
			if i > 0 {
				assert.GreaterOrEqual(t, scored[i-1].Similarity, s.Similarity)
			}
		}
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(embedding.Default(), nil, nil)
	docs := []models.Document{
		{Content: "first", Metadata: models.Metadata{Source: "a"}},
		{Content: "second", Metadata: models.Metadata{Source: "b"}},
		{Content: "third", Metadata: models.Metadata{Source: "c"}},
	}
	require.NoError(t, e.Ingest(ctx, docs))

	// a symbol-only query embeds to zero, so every score ties at 0
	scored := e.SearchWithScores(ctx, "?!", 2)
	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].Document.Metadata.Source)
	assert.Equal(t, "b", scored[1].Document.Metadata.Source)
	assert.Equal(t, 0.0, scored[0].Similarity)
}

func TestSearch_DuplicateIngestIsNotDeduplicated(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(embedding.Default(), nil, nil)
	docs := fourTopics()[:1]
	require.NoError(t, e.Ingest(ctx, docs))
	require.NoError(t, e.Ingest(ctx, docs))

	results := e.Search(ctx, "stack", 2)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Content, results[1].Content)
}

func TestSearch_FailureReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(explodingEmbedder{embedding.Default()}, nil, nil)
	require.NoError(t, e.Ingest(ctx, fourTopics()))

	results := e.Search(ctx, "boom", 2)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestWithDefaultK(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(embedding.Default(), nil, corpus.Fallback(), WithDefaultK(2))
	assert.Len(t, e.Search(ctx, "hash table", 0), 2)
	assert.Len(t, e.Search(ctx, "hash table", -1), 2)
}

func TestEngineImplementsRetriever(t *testing.T) {
	var _ Retriever = (*Engine)(nil)
}
