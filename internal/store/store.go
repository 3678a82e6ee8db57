// Package store holds the in-memory document collection and its lazy,
// at-most-once population from a primary corpus source or the built-in fallback.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"dsa-rag/internal/embedding"
	"dsa-rag/internal/models"
)

// Embedder produces the vector stored alongside each document.
type Embedder interface {
	Embed(text string) embedding.Embedding
}

// Source produces documents for initial population. It may fail.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.Document, error)
}

// Entry is an immutable (document, embedding) pair.
type Entry struct {
	Document  models.Document
	Embedding embedding.Embedding
}

// Store is an append-only, insertion-ordered collection of entries.
type Store struct {
	mu          sync.RWMutex
	entries     []Entry
	initialized bool

	// held across the empty check, population and flag update
	initMu sync.Mutex

	embedder Embedder
	primary  Source
	fallback []models.Document
}

// New creates an empty store. primary may be nil; fallback may be empty.
func New(embedder Embedder, primary Source, fallback []models.Document) *Store {
	return &Store{
		embedder: embedder,
		primary:  primary,
		fallback: fallback,
	}
}

// Add embeds and appends every document, in order, and marks the store
// initialized. Documents are never rejected or deduplicated.
func (s *Store) Add(docs []models.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", models.ErrStorage, r)
		}
	}()

	batch := make([]Entry, len(docs))
	for i, d := range docs {
		batch[i] = Entry{Document: d, Embedding: s.embedder.Embed(d.Content)}
	}

	s.mu.Lock()
	s.entries = append(s.entries, batch...)
	s.initialized = true
	total := len(s.entries)
	s.mu.Unlock()

	log.Debug().Int("added", len(batch)).Int("total", total).Msg("Stored documents")
	return nil
}

// IsEmpty reports whether the store holds no entries.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) == 0
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Initialized reports whether population has happened, by any path.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Entries returns a snapshot of the stored entries in insertion order.
// The documents and vectors are shared and must not be modified.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EnsureInitialized populates an empty, uninitialized store, first from the
// primary source and, if that fails, from the fallback corpus. Concurrent
// callers block until the first one finishes; later calls are no-ops.
func (s *Store) EnsureInitialized(ctx context.Context) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.Initialized() || !s.IsEmpty() {
		return
	}

	if docs, err := s.loadPrimary(ctx); err != nil {
		log.Warn().Err(err).Msg("Primary corpus unavailable, using fallback documents")
	} else if err := s.Add(docs); err != nil {
		log.Warn().Err(err).Msg("Failed to store primary corpus, using fallback documents")
	} else {
		log.Info().Int("documents", len(docs)).Str("source", s.primary.Name()).Msg("Initialized from primary corpus")
		return
	}

	if err := s.Add(s.fallback); err != nil {
		// the fallback corpus is static; this only fires on a broken embedder
		log.Error().Err(err).Msg("Failed to store fallback documents")
	}
	log.Info().Int("documents", len(s.fallback)).Msg("Initialized from fallback corpus")

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

func (s *Store) loadPrimary(ctx context.Context) (docs []models.Document, err error) {
	if s.primary == nil {
		return nil, fmt.Errorf("%w: no primary source configured", models.ErrCorpusSource)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", models.ErrCorpusSource, s.primary.Name(), r)
		}
	}()
	docs, err = s.primary.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrCorpusSource, s.primary.Name(), err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s produced no documents", models.ErrCorpusSource, s.primary.Name())
	}
	return docs, nil
}
