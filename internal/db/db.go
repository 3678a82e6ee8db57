package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"dsa-rag/internal/config"
	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64             `bun:"id,pk,autoincrement"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     pgvector.Vector   `bun:"embedding,notnull,type:vector"`
}

func newRow(d models.Document, vec embedding.Embedding) Document {
	return Document{
		Content:   d.Content,
		Metadata:  d.Metadata.ToMap(),
		Embedding: pgvector.NewVector(vec),
	}
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

// InitDB enables pgvector and creates the documents table.
func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// drop table documents
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

// Backend stores documents in Postgres and ranks them with the pgvector
// cosine distance operator. Ties break on insertion order.
type Backend struct {
	db       *bun.DB
	embedder *embedding.FeatureEmbedder

	initMu      sync.Mutex
	initialized bool
	fallback    []models.Document
}

func New(db *bun.DB, embedder *embedding.FeatureEmbedder, fallback []models.Document) *Backend {
	return &Backend{db: db, embedder: embedder, fallback: fallback}
}

func (b *Backend) Close() error { return b.db.Close() }

// Count returns the number of stored rows.
func (b *Backend) Count(ctx context.Context) (int, error) {
	return b.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (b *Backend) Ingest(ctx context.Context, docs []models.Document) error {
	rows := make([]Document, 0, len(docs))
	for _, d := range docs {
		vec := b.embedder.Embed(d.Content)
		if embedding.IsZero(vec) {
			// cosine distance to a zero vector is NaN
			log.Warn().Str("source", d.Metadata.Source).Msg("Skipping document without rankable content")
			continue
		}
		rows = append(rows, newRow(d, vec))
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := b.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to store documents: %w", models.ErrStorage, err)
	}
	log.Debug().Int("added", len(rows)).Msg("Stored documents in postgres")
	return nil
}

// Search never returns an error; failures are logged and give no documents.
func (b *Backend) Search(ctx context.Context, query string, k int) []models.Document {
	if k <= 0 {
		k = models.DefaultTopK
	}
	b.ensureInitialized(ctx)

	queryEmbedding := b.embedder.Embed(query)
	if embedding.IsZero(queryEmbedding) {
		return []models.Document{}
	}

	var rows []Document
	err := b.db.NewSelect().
		Model(&rows).
		Column("id", "content", "metadata").
		OrderExpr("embedding <=> ? ASC, id ASC", pgvector.NewVector(queryEmbedding)).
		Limit(k).
		Scan(ctx)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to search documents")
		return []models.Document{}
	}

	docs := make([]models.Document, 0, len(rows))
	for _, r := range rows {
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
	n, err := b.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count documents")
		return
	}
	b.initialized = true
	if n > 0 || len(b.fallback) == 0 {
		return
	}
	if err := b.Ingest(ctx, b.fallback); err != nil {
		log.Error().Err(err).Msg("Failed to seed table with fallback documents")
		return
	}
	log.Info().Int("documents", len(b.fallback)).Msg("Seeded empty table with fallback documents")
}
