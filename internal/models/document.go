package models

import (
	"strconv"
)

// Document is a unit of retrievable text. Documents are never mutated once stored.
type Document struct {
	Content  string
	Metadata Metadata
}

// Metadata is the normalized metadata schema shared by every corpus source.
// Only Source is expected to be set; Page is nil when the source has no pages.
type Metadata struct {
	Source string
	Page   *int
	Topic  string
	Extra  map[string]string
}

const (
	MetaSource = "source"
	MetaPage   = "page"
	MetaTopic  = "topic"
)

// PageOf returns a pointer to page, for building Metadata literals.
func PageOf(page int) *int {
	return &page
}

// ToMap flattens the metadata into string pairs for backends that store
// metadata as a flat map.
func (m Metadata) ToMap() map[string]string {
	out := make(map[string]string, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Source != "" {
		out[MetaSource] = m.Source
	}
	if m.Page != nil {
		out[MetaPage] = strconv.Itoa(*m.Page)
	}
	if m.Topic != "" {
		out[MetaTopic] = m.Topic
	}
	return out
}

// MetadataFromMap is the inverse of ToMap. A page value that is not an
// integer is kept in Extra rather than dropped.
func MetadataFromMap(in map[string]string) Metadata {
	var m Metadata
	for k, v := range in {
		switch k {
		case MetaSource:
			m.Source = v
		case MetaTopic:
			m.Topic = v
		case MetaPage:
			if p, err := strconv.Atoi(v); err == nil {
				m.Page = PageOf(p)
				continue
			}
			fallthrough
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[k] = v
		}
	}
	return m
}

// ScoredDocument pairs a document with its similarity to a query.
type ScoredDocument struct {
	Document   Document
	Similarity float64
}

// Chunk represents a parsed chunk with its page number
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// Answer is what the chat pipeline hands back to the front-end.
type Answer struct {
	Query   string
	Text    string
	Sources []string
}
