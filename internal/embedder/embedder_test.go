package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterministic(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	ctx := context.Background()
	a, err := emb.Embed(ctx, "player movement script")
	require.NoError(t, err)
	b, err := emb.Embed(ctx, "player movement script")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, LocalDimension)
}

func TestLocalProviderDistinctTexts(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := emb.Embed(ctx, "player")
	require.NoError(t, err)
	b, err := emb.Embed(ctx, "enemy")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLocalProviderEmptyText(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProviderBatchOrder(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)

	ctx := context.Background()
	texts := []string{"one", "two", "three"}
	vectors, err := emb.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := emb.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "vector %d must match single embed", i)
	}
}

func TestEmbedBatchValidation(t *testing.T) {
	emb, err := NewLocalProvider(nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = emb.EmbedBatch(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = emb.EmbedBatch(ctx, []string{"ok", ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tooMany := make([]string, MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = "x"
	}
	_, err = emb.EmbedBatch(ctx, tooMany)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(10)

	hash := ComputeHash("hello")
	_, ok := cache.Get(hash)
	assert.False(t, ok)

	cache.Set(hash, []float32{1, 2, 3})
	v, ok := cache.Get(hash)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, v)

	// Mutating the returned slice must not affect the cached value.
	v[0] = 99
	again, ok := cache.Get(hash)
	require.True(t, ok)
	assert.Equal(t, float32(1), again[0])
}

func TestCacheUsedByLocalProvider(t *testing.T) {
	cache := NewCache(10)
	emb, err := NewLocalProvider(cache)
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "cached text")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}
