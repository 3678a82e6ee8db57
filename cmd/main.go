package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dsa-rag/internal/chromemdb"
	"dsa-rag/internal/config"
	"dsa-rag/internal/corpus"
	"dsa-rag/internal/db"
	"dsa-rag/internal/embedding"
	"dsa-rag/internal/helper"
	"dsa-rag/internal/llmservice"
	"dsa-rag/internal/models"
	"dsa-rag/internal/rag"
	"dsa-rag/internal/retrieval"
	"dsa-rag/internal/store"
	"dsa-rag/internal/tui"
)

const (
	configFilePath = "./configs/config.yaml"
	chatLogFile    = "dsa-rag.log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Document file or glob pattern (e.g. docs/**/*.pdf) to ingest")
	dryRun := flag.Bool("dry-run", false, "Dry run, print parsed documents without storing them")
	query := flag.String("query", "", "Question to be answered")
	search := flag.String("search", "", "Print the documents retrieved for a query")
	k := flag.Int("k", 0, "Number of documents to retrieve")
	chat := flag.Bool("chat", false, "Start the interactive chat")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	setLogLevel(cfg.LogLevel)
	if *k <= 0 {
		*k = cfg.Search.DefaultK
	}

	set := 0
	for _, on := range []bool{*filePath != "", *query != "", *search != "", *chat} {
		if on {
			set++
		}
	}
	if set != 1 {
		log.Fatal().Msg("Please provide exactly one of -file, -query, -search or -chat")
	}

	ctx := context.Background()
	switch {
	case *filePath != "":
		ingestFile(ctx, cfg, *filePath, *dryRun)
	case *query != "":
		answerQuery(ctx, cfg, *query, *k)
	case *search != "":
		searchDocuments(ctx, cfg, *search, *k)
	case *chat:
		runChat(ctx, cfg, *k)
	}
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func newEmbedder(cfg *config.Config) *embedding.FeatureEmbedder {
	return embedding.NewFeatureEmbedder(embedding.Options{
		Dimensions:   cfg.Embedding.Dimensions,
		MaxWordChars: cfg.Embedding.MaxWordChars,
		KeywordBoost: cfg.Embedding.KeywordBoost,
		Keywords:     cfg.Embedding.Keywords,
	})
}

func fallbackDocs(cfg *config.Config) []models.Document {
	if !cfg.Corpus.FallbackOn() {
		return nil
	}
	return corpus.Fallback()
}

// openRetriever builds the configured backend. The returned func releases it.
func openRetriever(ctx context.Context, cfg *config.Config) (retrieval.Retriever, func(), error) {
	embedder := newEmbedder(cfg)
	noop := func() {}

	switch cfg.Backend.Type {
	case config.BackendMemory:
		var primary store.Source
		if cfg.Corpus.PrimaryPath != "" {
			primary = corpus.NewGlobSource(cfg.Corpus.PrimaryPath, cfg.Corpus.ChunkSize, *cfg.Corpus.ChunkOverlap)
		}
		return retrieval.NewEngine(embedder, primary, fallbackDocs(cfg), retrieval.WithDefaultK(cfg.Search.DefaultK)), noop, nil

	case config.BackendChromem:
		cc := cfg.Backend.Chromem
		if err := helper.CreateFolder(cc.Path); err != nil {
			return nil, nil, err
		}
		b, err := chromemdb.New(chromemdb.Config{
			Path:          cc.Path,
			Collection:    cc.Collection,
			InMemory:      cc.InMemory,
			Compress:      cc.Compress,
			EncryptionKey: cc.EncryptionKey,
		}, embedder, fallbackDocs(cfg))
		if err != nil {
			return nil, nil, err
		}
		if cc.InMemory && cc.EncryptionKey != "" {
			if err := b.Import(); err != nil {
				log.Debug().Err(err).Msg("No collection export to import")
			}
		}
		return b, noop, nil

	case config.BackendPGVector:
		sqldb, err := db.ConnectDB(&cfg.Backend.Database)
		if err != nil {
			return nil, nil, err
		}
		dbInstance := db.NewDB(sqldb, cfg.Backend.Database.Debug)
		if err := db.InitDB(ctx, dbInstance); err != nil {
			dbInstance.Close()
			return nil, nil, err
		}
		b := db.New(dbInstance, embedder, fallbackDocs(cfg))
		return b, func() { b.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
}

func ingestFile(ctx context.Context, cfg *config.Config, filePath string, dryRun bool) {
	source := corpus.NewGlobSource(filePath, cfg.Corpus.ChunkSize, *cfg.Corpus.ChunkOverlap)
	docs, err := source.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Error parsing document")
	}
	log.Info().Int("documents", len(docs)).Str("file", filePath).Msg("Parsed content")

	if dryRun {
		helper.PrettyPrint(docs)
		return
	}
	if err := checkIngestBackend(cfg.Backend.Type); err != nil {
		log.Fatal().Err(err).Msg("Refusing to ingest")
	}

	r, closeFn, err := openRetriever(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening backend")
	}
	defer closeFn()

	if err := r.Ingest(ctx, docs); err != nil {
		log.Fatal().Err(err).Msg("Error storing documents")
	}
	log.Info().Str("backend", cfg.Backend.Type).Msgf("Added %d documents", len(docs))

	if b, ok := r.(*chromemdb.Backend); ok && cfg.Backend.Chromem.InMemory {
		if err := b.Export(); err != nil {
			log.Fatal().Err(err).Msg("Error exporting collection")
		}
	}
}

// checkIngestBackend rejects backends that do not outlive the process.
func checkIngestBackend(backendType string) error {
	if backendType == config.BackendMemory {
		return fmt.Errorf("the %q backend is discarded when the process exits; set backend.type to %q or %q, or point corpus.primary_path at the file to load it on first search",
			backendType, config.BackendChromem, config.BackendPGVector)
	}
	return nil
}

func newRAG(ctx context.Context, cfg *config.Config, k int) (*rag.RAG, func()) {
	r, closeFn, err := openRetriever(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening backend")
	}

	var gen llmservice.Generator
	if llm, err := llmservice.New(&cfg.LLM); err != nil {
		log.Warn().Err(err).Msg("LLM unavailable, answering from retrieved context only")
	} else {
		gen = llm
	}
	return rag.NewRAG(r, gen).WithK(k), closeFn
}

func answerQuery(ctx context.Context, cfg *config.Config, query string, k int) {
	pipeline, closeFn := newRAG(ctx, cfg, k)
	defer closeFn()

	response := pipeline.Query(ctx, query, nil)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for i, s := range response.Sources {
		fmt.Printf("[%d] %s\n\n", i+1, s)
	}

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Text)
}

func searchDocuments(ctx context.Context, cfg *config.Config, query string, k int) {
	r, closeFn, err := openRetriever(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening backend")
	}
	defer closeFn()

	if engine, ok := r.(*retrieval.Engine); ok {
		for i, s := range engine.SearchWithScores(ctx, query, k) {
			fmt.Printf("%d. score=%.4f source=%s\n%s\n\n", i+1, s.Similarity, s.Document.Metadata.Source, s.Document.Content)
		}
		return
	}
	for i, d := range r.Search(ctx, query, k) {
		fmt.Printf("%d. source=%s\n%s\n\n", i+1, d.Metadata.Source, d.Content)
	}
}

func runChat(ctx context.Context, cfg *config.Config, k int) {
	// the terminal belongs to the TUI; logs go to a file
	f, err := os.OpenFile(chatLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening log file")
	}
	defer f.Close()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}).With().Caller().Logger()

	pipeline, closeFn := newRAG(ctx, cfg, k)
	defer closeFn()

	summary := fmt.Sprintf("Backend: %s  k=%d  Ctrl+C to quit", cfg.Backend.Type, k)
	if _, err := tea.NewProgram(tui.New(pipeline, summary), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("Error running chat")
	}
}
