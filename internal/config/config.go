package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/retriever"
)

// Config holds the application configuration
type Config struct {
	Project   ProjectConfig   `yaml:"project,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
}

// ProjectConfig describes which files are indexed
type ProjectConfig struct {
	Root       string   `yaml:"root,omitempty"`       // Project root, default "."
	Extensions []string `yaml:"extensions,omitempty"` // Override the default file types
	Exclude    []string `yaml:"exclude,omitempty"`    // Extra glob patterns to skip
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider   string `yaml:"provider,omitempty"` // "openai" | "ollama" | "local"
	Model      string `yaml:"model,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	OllamaHost string `yaml:"ollama_host,omitempty"`
	BatchSize  int    `yaml:"batch_size,omitempty"`
	CacheSize  int    `yaml:"cache_size,omitempty"` // In-memory LRU entries
}

// SearchConfig holds retrieval configuration
type SearchConfig struct {
	SemanticWeight float64 `yaml:"semantic_weight"` // Vector signal weight (0-1)
	DefaultK       int     `yaml:"default_k,omitempty"`
}

// CacheConfig holds the persistent embedding cache configuration
type CacheConfig struct {
	Path     string `yaml:"path,omitempty"` // Default ~/.gdcontext/embeddings.db
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault reads the file at path, or returns defaults when path is
// empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultCachePath returns ~/.gdcontext/embeddings.db, or a path relative
// to the working directory when the home directory is unknown.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gdcontext", "embeddings.db")
	}
	return filepath.Join(home, ".gdcontext", "embeddings.db")
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Project.Root == "" {
		c.Project.Root = "."
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = embedder.DefaultBatchSize
	}
	if c.Search.SemanticWeight <= 0 {
		c.Search.SemanticWeight = retriever.DefaultSemanticWeight
	}
	if c.Search.DefaultK == 0 {
		c.Search.DefaultK = retriever.DefaultK
	}
	if c.Cache.Path != "" {
		c.Cache.Path = expandPath(c.Cache.Path)
	} else {
		c.Cache.Path = DefaultCachePath()
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight must be between 0 and 1, got: %v", c.Search.SemanticWeight)
	}
	if c.Search.DefaultK < 0 {
		return fmt.Errorf("default_k must be positive, got: %d", c.Search.DefaultK)
	}
	if c.Embedding.BatchSize < 0 || c.Embedding.BatchSize > embedder.MaxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d, got: %d", embedder.MaxBatchSize, c.Embedding.BatchSize)
	}
	switch c.Embedding.Provider {
	case "", embedder.ProviderOpenAI, embedder.ProviderOllama, embedder.ProviderLocal:
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	return nil
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[len("$HOME/"):])
		}
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
