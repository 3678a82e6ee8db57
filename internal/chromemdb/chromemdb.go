package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"dsa-rag/internal/embedding"
	"dsa-rag/internal/helper"
	"dsa-rag/internal/models"
)

// Config selects where and how the collection is kept.
type Config struct {
	Path          string
	Collection    string
	InMemory      bool
	Compress      bool
	EncryptionKey string
}

// Backend is a chromem-go collection implementing the retrieval contract.
// Vectors come from the shared feature embedder, never from chromem itself.
type Backend struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   *embedding.FeatureEmbedder
	cfg        Config
	filePath   string

	initMu      sync.Mutex
	initialized bool
	fallback    []models.Document
}

// New opens (or creates) the database and collection. fallback seeds an
// empty collection on first search; it may be nil.
func New(cfg Config, embedder *embedding.FeatureEmbedder, fallback []models.Document) (*Backend, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	c, err := db.GetOrCreateCollection(cfg.Collection, map[string]string{"description": "document embeddings"}, embedder.EmbeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &Backend{
		db:         db,
		collection: c,
		embedder:   embedder,
		cfg:        cfg,
		filePath:   filepath.Join(cfg.Path, cfg.Collection+".chromem"),
		fallback:   fallback,
	}, nil
}

// Count returns the number of documents in the collection.
func (b *Backend) Count() int { return b.collection.Count() }

// Ingest embeds and adds docs. Each document gets a fresh ID, so repeated
// ingestion stores duplicates, as the in-memory engine does.
func (b *Backend) Ingest(ctx context.Context, docs []models.Document) error {
	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		vec := b.embedder.Embed(d.Content)
		if embedding.IsZero(vec) {
			// chromem normalizes on insert; a zero vector would become NaN
			log.Warn().Str("source", d.Metadata.Source).Msg("Skipping document without rankable content")
			continue
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return fmt.Errorf("%w: %w", models.ErrStorage, err)
		}
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:        id,
			Content:   d.Content,
			Metadata:  d.Metadata.ToMap(),
			Embedding: vec,
		})
	}
	if len(chromemDocs) == 0 {
		return nil
	}
	if err := b.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: failed to add documents: %w", models.ErrStorage, err)
	}
	log.Debug().Int("added", len(chromemDocs)).Int("total", b.Count()).Msg("Stored documents in chromem")
	return nil
}

// Search returns up to k documents by cosine similarity. Failures are
// logged and yield an empty result.
func (b *Backend) Search(ctx context.Context, query string, k int) []models.Document {
	if k <= 0 {
		k = models.DefaultTopK
	}
	b.ensureInitialized(ctx)

	n := b.Count()
	queryEmbedding := b.embedder.Embed(query)
	if n == 0 || embedding.IsZero(queryEmbedding) {
		return []models.Document{}
	}

	results, err := b.collection.QueryEmbedding(ctx, queryEmbedding, min(k, n), nil, nil)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to query by similarity")
		return []models.Document{}
	}

	docs := make([]models.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, models.Document{Content: r.Content, Metadata: models.MetadataFromMap(r.Metadata)})
	}
	return docs
}

func (b *Backend) ensureInitialized(ctx context.Context) {
	b.initMu.Lock()
	defer b.initMu.Unlock()
	if b.initialized {
		return
	}
	b.initialized = true
	if b.Count() > 0 || len(b.fallback) == 0 {
		return
	}
	if err := b.Ingest(ctx, b.fallback); err != nil {
		log.Error().Err(err).Msg("Failed to seed collection with fallback documents")
		return
	}
	log.Info().Int("documents", len(b.fallback)).Msg("Seeded empty collection with fallback documents")
}

// DeleteCollection drops the collection and all of its documents.
func (b *Backend) DeleteCollection() error {
	if err := b.db.DeleteCollection(b.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// Export writes the collection to an encrypted file next to the database.
func (b *Backend) Export() error {
	if b.cfg.EncryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("collection", b.collection.Name).Str("file", b.filePath).Bool("compress", b.cfg.Compress).Msg("Exporting collection")
	if err := b.db.ExportToFile(b.filePath, b.cfg.Compress, b.cfg.EncryptionKey, b.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import loads a previous Export into the database and rebinds the collection.
func (b *Backend) Import() error {
	if err := b.db.ImportFromFile(b.filePath, b.cfg.EncryptionKey, b.collection.Name); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	c := b.db.GetCollection(b.collection.Name, b.embedder.EmbeddingFunc())
	if c == nil {
		return fmt.Errorf("collection %s missing after import", b.collection.Name)
	}
	b.collection = c
	return nil
}
