package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
)

const (
	ProviderLocal  = "local"
	LocalDimension = 384
)

// LocalProvider is a deterministic offline embedder. Vectors are derived
// from the content hash, so identical text always embeds identically. It
// carries no semantic signal and exists for offline use and tests.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a local embedder.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-hash-embeddings",
		cache: cache,
	}, nil
}

func (l *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if v, ok := l.cache.Get(hash); ok {
			return v, nil
		}
	}

	// Stretch the 32-byte digest across the whole vector by rehashing with
	// a block counter.
	vector := make([]float32, LocalDimension)
	seed := []byte(text)
	for i := 0; i < LocalDimension; i += sha256.Size {
		block := sha256.Sum256(append(seed, byte(i/sha256.Size)))
		for j := 0; j < sha256.Size && i+j < LocalDimension; j++ {
			vector[i+j] = float32(block[j]) / 255.0
		}
	}

	if l.cache != nil {
		l.cache.Set(hash, vector)
	}
	return vector, nil
}

func (l *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := l.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
