package retriever

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/scanner"
	"github.com/gdassist/gdcontext-mcp/internal/storage"
)

// countingEmbedder wraps another embedder and counts embedded texts.
type countingEmbedder struct {
	embedder.Embedder
	embedded int
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.embedded += len(texts)
	return c.Embedder.EmbedBatch(ctx, texts)
}

func localEmbedder(t *testing.T) embedder.Embedder {
	t.Helper()
	emb, err := embedder.New(embedder.Config{Provider: embedder.ProviderLocal})
	require.NoError(t, err)
	return emb
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func gdConfig() scanner.Config {
	return scanner.Config{Extensions: []string{".gd"}}
}

func TestIndexAndRetrieve(t *testing.T) {
	root := writeProject(t, map[string]string{
		"scripts/player.gd": "extends CharacterBody2D\n\nfunc _physics_process(delta):\n    move_and_slide()",
		"scripts/enemy.gd":  "extends Area2D\n\nfunc _on_body_entered(body):\n    queue_free()",
	})
	r := New(localEmbedder(t), gdConfig())

	count, err := r.Index(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, r.DocumentCount())

	out, err := r.Retrieve(context.Background(), "player", 2)
	require.NoError(t, err)
	assert.Contains(t, out, "--- Document 1:")
	assert.Contains(t, out, "scripts/player.gd")
	assert.Contains(t, out, "--- End of")
}

func TestRetrieveBeforeIndex(t *testing.T) {
	r := New(localEmbedder(t), gdConfig())

	out, err := r.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, NotIndexedMessage, out)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r := New(localEmbedder(t), gdConfig())

	_, err := r.Retrieve(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveNoResults(t *testing.T) {
	root := writeProject(t, map[string]string{
		"scripts/player.gd": "extends Node",
	})
	// With a pure keyword weight, a query that matches nothing yields no
	// documents at all.
	r := New(localEmbedder(t), gdConfig(), WithSemanticWeight(0))

	_, err := r.Index(context.Background(), root)
	require.NoError(t, err)

	out, err := r.Retrieve(context.Background(), "xylophone", 3)
	require.NoError(t, err)
	assert.Equal(t, "No relevant documents found for query: 'xylophone'", out)
}

func TestIndexEmptyTree(t *testing.T) {
	r := New(localEmbedder(t), gdConfig())

	count, err := r.Index(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, count)

	out, err := r.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, NotIndexedMessage, out)
}

func TestIndexToleratesEmptyFiles(t *testing.T) {
	// A readable zero-byte file is valid corpus input; it must not trip the
	// provider's empty-input validation and fail the whole rebuild.
	root := writeProject(t, map[string]string{
		"scripts/player.gd": "extends Node",
		"scripts/empty.gd":  "",
	})
	r := New(localEmbedder(t), gdConfig())

	count, err := r.Index(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out, err := r.Retrieve(context.Background(), "player", 2)
	require.NoError(t, err)
	assert.Contains(t, out, "scripts/player.gd")
}

func TestIndexMissingRoot(t *testing.T) {
	r := New(localEmbedder(t), gdConfig())

	_, err := r.Index(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestConcurrentIndexRejected(t *testing.T) {
	r := New(localEmbedder(t), gdConfig())

	require.True(t, r.lock.TryAcquire())
	defer r.lock.Release()

	_, err := r.Index(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrIndexInProgress)
}

func TestReindexSwapsSnapshot(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.gd": "extends Node",
	})
	r := New(localEmbedder(t), gdConfig())
	ctx := context.Background()

	count, err := r.Index(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.gd"), []byte("extends Node2D"), 0o644))

	count, err = r.Index(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, r.DocumentCount())
}

func TestIndexReusesCachedEmbeddings(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.gd": "extends Node",
		"b.gd": "extends Node2D",
	})
	cache, err := storage.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	counting := &countingEmbedder{Embedder: localEmbedder(t)}
	r := New(counting, gdConfig(), WithEmbeddingCache(cache))
	ctx := context.Background()

	_, err = r.Index(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.embedded)

	// Unchanged files come out of the cache on the second rebuild.
	_, err = r.Index(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.embedded)
}

func TestRetrieveFormatsBlocks(t *testing.T) {
	// A nested path keeps relative path and filename distinct: the opening
	// delimiter carries the relative path, the closing one the filename.
	root := writeProject(t, map[string]string{
		"scripts/player.gd": "extends Node",
	})
	r := New(localEmbedder(t), gdConfig(), WithSemanticWeight(0))
	ctx := context.Background()

	_, err := r.Index(ctx, root)
	require.NoError(t, err)

	out, err := r.Retrieve(ctx, "player", 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "--- Document 1: scripts/player.gd ---\n"))
	assert.Contains(t, out, "extends Node")
	assert.True(t, strings.HasSuffix(out, "--- End of player.gd ---\n"))
}

func TestStats(t *testing.T) {
	root := writeProject(t, map[string]string{"a.gd": "extends Node"})
	r := New(localEmbedder(t), gdConfig())

	stats := r.Stats()
	assert.False(t, stats.Indexed)
	assert.Equal(t, "local", stats.Provider)

	_, err := r.Index(context.Background(), root)
	require.NoError(t, err)

	stats = r.Stats()
	assert.True(t, stats.Indexed)
	assert.Equal(t, 1, stats.DocumentCount)
	assert.Equal(t, root, stats.Root)
	assert.False(t, stats.BuiltAt.IsZero())
}
