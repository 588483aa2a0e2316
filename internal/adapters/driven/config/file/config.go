// Package file provides TOML-based configuration loading for the lexirag
// CLI. Secrets come from the environment, never the config file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	Chunking    ChunkingConfig    `toml:"chunking"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	VectorStore VectorStoreConfig `toml:"vectorstore"`
	Verify      bool              `toml:"verify"`
}

// ChunkingConfig tunes the document chunker.
type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	Overlap      int `toml:"overlap"`
	MinChunkSize int `toml:"min_chunk_size"`
}

// RetrievalConfig tunes the retriever.
type RetrievalConfig struct {
	TopK               int       `toml:"top_k"`
	MinScore           float64   `toml:"min_score"`
	FallbackThresholds []float64 `toml:"fallback_thresholds"`
	Hybrid             bool      `toml:"hybrid"`
	EnforceDiversity   bool      `toml:"enforce_diversity"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openrouter" or "openai".
	Provider   string  `toml:"provider"`
	Model      string  `toml:"model"`
	Dimensions int     `toml:"dimensions"`
	RPS        float64 `toml:"requests_per_second"`
}

// LLMConfig selects and tunes the chat model.
type LLMConfig struct {
	Model          string   `toml:"model"`
	FallbackModels []string `toml:"fallback_models"`
}

// VectorStoreConfig selects and tunes the vector store.
type VectorStoreConfig struct {
	// Provider is "pinecone", "sqlite", or "memory".
	Provider string `toml:"provider"`

	// IndexHost is the Pinecone index endpoint.
	IndexHost string `toml:"index_host"`

	// Namespace scopes Pinecone operations.
	Namespace string `toml:"namespace"`

	// Path is the SQLite database path.
	Path string `toml:"path"`

	Dimensions int `toml:"dimensions"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSize:    800,
			Overlap:      150,
			MinChunkSize: 100,
		},
		Retrieval: RetrievalConfig{
			TopK:               10,
			MinScore:           0.20,
			FallbackThresholds: []float64{0.10},
			Hybrid:             true,
			EnforceDiversity:   true,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openrouter",
			Dimensions: 1536,
		},
		LLM:         LLMConfig{},
		VectorStore: VectorStoreConfig{Provider: "sqlite", Dimensions: 1536},
		Verify:      true,
	}
}

// DefaultPath returns the default config file location,
// ~/.lexirag/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lexirag", "config.toml"), nil
}

// Load reads the config file at path, layered over defaults. A missing
// file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config as TOML with restricted permissions.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate rejects configurations that would fail deep inside the
// pipeline.
func (c Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive")
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap must be smaller than chunk_size")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	switch c.VectorStore.Provider {
	case "pinecone", "sqlite", "memory", "":
	default:
		return fmt.Errorf("vectorstore.provider %q is not supported", c.VectorStore.Provider)
	}
	switch c.Embedding.Provider {
	case "openrouter", "openai", "":
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	return nil
}
