package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, 100, cfg.Embedding.MaxWordChars)
	require.NotNil(t, cfg.Embedding.KeywordBoost)
	assert.Equal(t, 5.0, *cfg.Embedding.KeywordBoost)
	require.NotNil(t, cfg.Corpus.ChunkOverlap)
	assert.Equal(t, 200, *cfg.Corpus.ChunkOverlap)
	assert.Equal(t, BackendMemory, cfg.Backend.Type)
	assert.Equal(t, 4, cfg.Search.DefaultK)
	assert.True(t, cfg.Corpus.FallbackOn())
}

func TestLoadConfig_FileOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
log_level: debug
corpus:
  primary_path: notes.pdf
  fallback_enabled: false
backend:
  type: chromem
  chromem:
    in_memory: true
search:
  default_k: 2
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "notes.pdf", cfg.Corpus.PrimaryPath)
	assert.False(t, cfg.Corpus.FallbackOn())
	assert.Equal(t, BackendChromem, cfg.Backend.Type)
	assert.True(t, cfg.Backend.Chromem.InMemory)
	assert.Equal(t, "ktugpt-docs", cfg.Backend.Chromem.Collection)
	assert.Equal(t, 2, cfg.Search.DefaultK)
	assert.Equal(t, 1000, cfg.Corpus.ChunkSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("DATABASE_DSN", "postgres://localhost/rag")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.LLM.Key)
	assert.Equal(t, "postgres://localhost/rag", cfg.Backend.Database.DSN)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Backend.Type = BackendPGVector
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendPGVector, loaded.Backend.Type)
}

func TestLoadConfig_ExplicitZeroesAreKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
embedding:
  keyword_boost: 0
corpus:
  chunk_overlap: 0
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Embedding.KeywordBoost)
	assert.Equal(t, 0.0, *cfg.Embedding.KeywordBoost)
	require.NotNil(t, cfg.Corpus.ChunkOverlap)
	assert.Equal(t, 0, *cfg.Corpus.ChunkOverlap)
	// untouched keys still default
	assert.Equal(t, 1000, cfg.Corpus.ChunkSize)
}
