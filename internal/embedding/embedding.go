// Package embedding implements the deterministic feature embedding used at
// both ingestion and query time, and the cosine scorer used to compare vectors.
package embedding

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/philippgille/chromem-go"
)

// Embedding is a fixed-length vector that is either all zeros or unit length.
type Embedding []float32

const (
	DefaultDimensions   = 384
	DefaultMaxWordChars = 100
	DefaultKeywordBoost = 5.0

	// keyword k lands on dimension (k * keywordStride) mod dims
	keywordStride = 13
)

// DefaultKeywords is the domain vocabulary whose whole-word occurrences are boosted.
// Order matters: a keyword's position selects its dimension.
var DefaultKeywords = []string{
	"stack", "stacks", "queue", "queues", "array", "arrays",
	"tree", "trees", "graph", "graphs", "algorithm", "algorithms",
	"data", "structure", "structures", "sort", "sorting", "search",
	"searching", "binary", "heap", "hash", "linked", "list",
	"lists", "pointer", "pointers", "recursion", "recursive", "iteration",
	"iterative", "complexity", "time", "space", "big", "lifo",
	"fifo", "push", "pop", "peek", "top", "enqueue",
	"dequeue", "front", "rear",
}

type Options struct {
	Dimensions   int
	MaxWordChars int
	// nil means DefaultKeywordBoost; zero disables the boost
	KeywordBoost *float64
	Keywords     []string
}

// FeatureEmbedder maps text to a hashed character-position feature vector.
// It is safe for concurrent use.
type FeatureEmbedder struct {
	dims         int
	maxWordChars int
	boost        float64
	keywords     []*regexp.Regexp
	tokenPattern *regexp.Regexp
}

// NewFeatureEmbedder builds an embedder; zero-valued options take the defaults.
func NewFeatureEmbedder(opts Options) *FeatureEmbedder {
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultDimensions
	}
	if opts.MaxWordChars <= 0 {
		opts.MaxWordChars = DefaultMaxWordChars
	}
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultKeywords
	}
	boost := DefaultKeywordBoost
	if opts.KeywordBoost != nil {
		boost = *opts.KeywordBoost
	}
	patterns := make([]*regexp.Regexp, len(opts.Keywords))
	for i, kw := range opts.Keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
	}
	return &FeatureEmbedder{
		dims:         opts.Dimensions,
		maxWordChars: opts.MaxWordChars,
		boost:        boost,
		keywords:     patterns,
		tokenPattern: regexp.MustCompile(`\w+`),
	}
}

// Default returns an embedder with the stock constants.
func Default() *FeatureEmbedder {
	return NewFeatureEmbedder(Options{})
}

// Dimensions returns the length of every produced vector.
func (e *FeatureEmbedder) Dimensions() int { return e.dims }

// Embed computes the embedding of text. Empty or symbol-only text yields the zero vector.
func (e *FeatureEmbedder) Embed(text string) Embedding {
	lower := strings.ToLower(text)
	words := e.tokenPattern.FindAllString(lower, -1)
	vec := make([]float64, e.dims)

	for i, word := range words {
		// tokens are ASCII, so a byte is a character
		for j := 0; j < len(word) && j < e.maxWordChars; j++ {
			idx := (int(word[j]) + j + i) % e.dims
			vec[idx] += 1 / float64(j+1)
		}
	}

	for k, re := range e.keywords {
		count := len(re.FindAllStringIndex(lower, -1))
		if count > 0 {
			vec[(k*keywordStride)%e.dims] += float64(count) * e.boost
		}
	}

	// text statistics only count when there is at least one word,
	// otherwise punctuation-only text would not be degenerate
	if len(words) > 0 && e.dims >= 4 {
		vec[e.dims-4] = float64(len(utf16.Encode([]rune(text)))) / 1000
		vec[e.dims-3] = float64(len(words)) / 100
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make(Embedding, e.dims)
	for i, v := range vec {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

// EmbeddingFunc adapts the embedder to chromem-go so that an external
// collection ranks with exactly the same vectors as the in-memory store.
func (e *FeatureEmbedder) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		return e.Embed(text), nil
	}
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
