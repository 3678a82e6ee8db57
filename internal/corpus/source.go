// Package corpus provides the document sources used to populate a store:
// files parsed into chunked documents, and the built-in fallback corpus.
package corpus

import (
	"context"
	"path/filepath"
	"strconv"

	"dsa-rag/internal/models"
	"dsa-rag/internal/parser"
)

// FileSource loads a single document file and chunks it.
type FileSource struct {
	Path    string
	Options parser.Options
}

func NewFileSource(path string, chunkSize, chunkOverlap int) *FileSource {
	return &FileSource{Path: path, Options: parser.Options{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}}
}

func (s *FileSource) Name() string { return "file:" + s.Path }

// Load parses the file. Chunks carry the file name as source and, for paged
// formats, the page number.
func (s *FileSource) Load(ctx context.Context) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chunks, err := parser.ParseFile(s.Path, s.Options)
	if err != nil {
		return nil, err
	}
	return ChunksToDocuments(filepath.Base(s.Path), chunks), nil
}

// ChunksToDocuments wraps parsed chunks as documents from source.
func ChunksToDocuments(source string, chunks []models.Chunk) []models.Document {
	docs := make([]models.Document, 0, len(chunks))
	for _, c := range chunks {
		meta := models.Metadata{
			Source: source,
			Extra:  map[string]string{"chunk": strconv.Itoa(c.ChunkID)},
		}
		if c.PageNumber != parser.NoPage {
			meta.Page = models.PageOf(c.PageNumber)
		}
		docs = append(docs, models.Document{Content: c.Content, Metadata: meta})
	}
	return docs
}

// Static serves a fixed document list. It never fails.
type Static struct {
	Label string
	Docs  []models.Document
}

func (s Static) Name() string { return s.Label }

func (s Static) Load(context.Context) ([]models.Document, error) {
	return s.Docs, nil
}
