// Package retrieval answers top-k queries over an in-memory document store
// using exact, brute-force cosine similarity.
package retrieval

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
	"dsa-rag/internal/store"
)

// Retriever is the ingest/search capability offered to the chat pipeline.
// The in-memory Engine and the external backends all implement it and all
// embed with the same feature embedder.
type Retriever interface {
	Ingest(ctx context.Context, docs []models.Document) error
	// Search never fails; on any internal error it returns no documents.
	Search(ctx context.Context, query string, k int) []models.Document
}

type Engine struct {
	store    *store.Store
	embedder store.Embedder
	defaultK int
}

type Option func(*Engine)

// WithDefaultK sets the result count used when Search is called with k <= 0.
func WithDefaultK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.defaultK = k
		}
	}
}

// NewEngine creates an engine over an empty store. The store is populated on
// first search from primary, or from fallback when primary fails, unless
// Ingest is called first.
func NewEngine(embedder store.Embedder, primary store.Source, fallback []models.Document, opts ...Option) *Engine {
	e := &Engine{
		store:    store.New(embedder, primary, fallback),
		embedder: embedder,
		defaultK: models.DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest appends docs to the store. Ingesting the same documents twice
// stores them twice.
func (e *Engine) Ingest(_ context.Context, docs []models.Document) error {
	return e.store.Add(docs)
}

// Len returns the number of stored entries.
func (e *Engine) Len() int { return e.store.Len() }

// Search returns at most k documents ordered by decreasing similarity to query.
func (e *Engine) Search(ctx context.Context, query string, k int) []models.Document {
	scored := e.SearchWithScores(ctx, query, k)
	docs := make([]models.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs
}

// SearchWithScores is Search with each document's similarity attached.
// Equal scores keep insertion order.
func (e *Engine) SearchWithScores(ctx context.Context, query string, k int) (results []models.ScoredDocument) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", query).Msg("Search failed")
			results = []models.ScoredDocument{}
		}
	}()

	if k <= 0 {
		k = e.defaultK
	}

	e.store.EnsureInitialized(ctx)
	entries := e.store.Entries()
	if len(entries) == 0 {
		log.Info().Msg("No documents in store")
		return []models.ScoredDocument{}
	}

	queryEmbedding := e.embedder.Embed(query)

	scored := make([]models.ScoredDocument, len(entries))
	for i, entry := range entries {
		scored[i] = models.ScoredDocument{
			Document:   entry.Document,
			Similarity: embedding.Similarity(queryEmbedding, entry.Embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })

	if k > len(scored) {
		k = len(scored)
	}
	log.Debug().Int("results", k).Str("query", query).Msg("Found similar documents")
	return scored[:k]
}
