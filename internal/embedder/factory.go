package embedder

import (
	"fmt"
	"os"
	"strings"
)

// EnvProvider selects the embedding provider explicitly.
const EnvProvider = "GDCONTEXT_EMBEDDING_PROVIDER"

// Config holds embedder configuration.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	OllamaHost string
	CacheSize  int
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize != 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaHost, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. GDCONTEXT_EMBEDDING_PROVIDER (openai, ollama, local)
//  2. OPENAI_API_KEY set -> openai
//  3. OLLAMA_HOST set -> ollama
//  4. local
func NewFromEnv() (Embedder, error) {
	cache := NewCache(10000)

	if provider := os.Getenv(EnvProvider); provider != "" {
		switch strings.ToLower(provider) {
		case ProviderOpenAI:
			return NewOpenAIProvider("", "", cache)
		case ProviderOllama:
			return NewOllamaProvider("", "", cache)
		case ProviderLocal:
			return NewLocalProvider(cache)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
		}
	}

	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return NewOpenAIProvider("", "", cache)
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return NewOllamaProvider("", "", cache)
	}
	return NewLocalProvider(cache)
}

// DetectProvider returns the provider NewFromEnv would choose.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvOllamaHost) != "" {
		return ProviderOllama
	}
	return ProviderLocal
}
