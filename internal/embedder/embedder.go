package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderFailed      = errors.New("embedding provider failed")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrBatchTooLarge       = errors.New("batch size exceeds limit")
)

// Batch limits
const (
	DefaultBatchSize = 50
	MaxBatchSize     = 100
)

// Embedder produces fixed-dimension embedding vectors for text. For a fixed
// provider and model the mapping is deterministic: the same text always
// yields the same vector.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for up to MaxBatchSize texts,
	// returned in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension for this provider.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache is an in-memory LRU cache of embedding vectors keyed by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which is already fixed up.
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector. The copy keeps caller mutations
// from corrupting the cached value.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector with automatic LRU eviction.
func (c *Cache) Set(hash string, vector []float32) {
	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.cache.Add(hash, stored)
}

// Len returns the current cache size.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 content hash used as the cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// validateTexts validates a batch input.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	if len(texts) > MaxBatchSize {
		return fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
