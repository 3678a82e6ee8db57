package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Backend   BackendConfig   `yaml:"backend"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
}

// EmbeddingConfig holds the feature embedder constants. Changing any of them
// invalidates vectors already stored by a persistent backend.
type EmbeddingConfig struct {
	Dimensions   int      `yaml:"dimensions"`
	MaxWordChars int      `yaml:"max_word_chars"`
	KeywordBoost *float64 `yaml:"keyword_boost,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty"`
}

type CorpusConfig struct {
	PrimaryPath     string `yaml:"primary_path"`
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    *int   `yaml:"chunk_overlap,omitempty"`
	FallbackEnabled *bool  `yaml:"fallback_enabled,omitempty"`
}

type BackendConfig struct {
	Type     string         `yaml:"type"`
	Chromem  ChromemConfig  `yaml:"chromem"`
	Database DatabaseConfig `yaml:"database"`
}

type ChromemConfig struct {
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type SearchConfig struct {
	DefaultK int `yaml:"default_k"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

const (
	BackendMemory   = "memory"
	BackendChromem  = "chromem"
	BackendPGVector = "pgvector"
)

// LoadEnv loads .env.local and .env when present. Missing files are not an error.
func LoadEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// LoadConfig reads a config from path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// FallbackOn reports whether the built-in corpus may be used.
func (c CorpusConfig) FallbackOn() bool {
	return c.FallbackEnabled == nil || *c.FallbackEnabled
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxWordChars == 0 {
		cfg.Embedding.MaxWordChars = 100
	}
	if cfg.Embedding.KeywordBoost == nil {
		boost := 5.0
		cfg.Embedding.KeywordBoost = &boost
	}
	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = 1000
	}
	if cfg.Corpus.ChunkOverlap == nil {
		overlap := 200
		cfg.Corpus.ChunkOverlap = &overlap
	}
	if cfg.Backend.Type == "" {
		cfg.Backend.Type = BackendMemory
	}
	if cfg.Backend.Chromem.Path == "" {
		cfg.Backend.Chromem.Path = "./chromemdb"
	}
	if cfg.Backend.Chromem.Collection == "" {
		cfg.Backend.Chromem.Collection = "ktugpt-docs"
	}
	if cfg.Search.DefaultK <= 0 {
		cfg.Search.DefaultK = 4
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Backend.Database.DSN = v
	}
	if v := os.Getenv("CHROMEM_ENCRYPTION_KEY"); v != "" {
		cfg.Backend.Chromem.EncryptionKey = v
	}
}
