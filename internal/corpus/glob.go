package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"dsa-rag/internal/models"
	"dsa-rag/internal/parser"
)

// GlobSource loads every file matching a doublestar pattern such as
// "docs/**/*.pdf". A plain path matches itself.
type GlobSource struct {
	Pattern string
	Options parser.Options
}

func NewGlobSource(pattern string, chunkSize, chunkOverlap int) *GlobSource {
	return &GlobSource{Pattern: pattern, Options: parser.Options{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}}
}

func (s *GlobSource) Name() string { return "glob:" + s.Pattern }

// Load parses the matched files in lexical order. Files that fail to parse
// are skipped; it is an error when none succeed.
func (s *GlobSource) Load(ctx context.Context) ([]models.Document, error) {
	paths, err := doublestar.FilepathGlob(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %q", s.Pattern)
	}
	sort.Strings(paths)

	var docs []models.Document
	loaded := 0
	for _, p := range paths {
		fileDocs, err := (&FileSource{Path: p, Options: s.Options}).Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("file", p).Msg("Skipping file")
			continue
		}
		loaded++
		docs = append(docs, fileDocs...)
	}
	if loaded == 0 {
		return nil, fmt.Errorf("none of the %d files matching %q could be parsed", len(paths), s.Pattern)
	}
	log.Debug().Int("files", loaded).Int("documents", len(docs)).Str("pattern", s.Pattern).Msg("Loaded corpus files")
	return docs, nil
}
