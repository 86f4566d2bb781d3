package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdassist/gdcontext-mcp/internal/config"
	"github.com/gdassist/gdcontext-mcp/internal/embedder"
)

func testServer(t *testing.T, root string) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Embedding.Provider = embedder.ProviderLocal
	cfg.Cache.Disabled = true

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(s.close)
	return s
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServerComponents(t *testing.T) {
	s := testServer(t, t.TempDir())

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.retriever)
	assert.NotNil(t, s.embedder)
	assert.Nil(t, s.cache)
}

func TestIndexAndRetrieveTools(t *testing.T) {
	root := t.TempDir()
	content := "extends CharacterBody2D\n\nfunc _physics_process(delta):\n    move_and_slide()"
	require.NoError(t, os.WriteFile(filepath.Join(root, "player.gd"), []byte(content), 0o644))

	s := testServer(t, root)
	ctx := context.Background()

	result, err := s.handleIndexProject(ctx, callTool(nil))
	require.NoError(t, err)
	out := resultText(t, result)
	assert.Contains(t, out, `"indexed": true`)
	assert.Contains(t, out, `"document_count": 1`)

	result, err = s.handleRetrieveContext(ctx, callTool(map[string]interface{}{
		"query": "player",
	}))
	require.NoError(t, err)
	out = resultText(t, result)
	assert.Contains(t, out, "player.gd")
	assert.Contains(t, out, "--- Document 1:")
}

func TestRetrieveContextBeforeIndex(t *testing.T) {
	s := testServer(t, t.TempDir())

	result, err := s.handleRetrieveContext(context.Background(), callTool(map[string]interface{}{
		"query": "anything",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No documents have been indexed yet.", resultText(t, result))
}

func TestRetrieveContextEmptyQuery(t *testing.T) {
	s := testServer(t, t.TempDir())

	_, err := s.handleRetrieveContext(context.Background(), callTool(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestIndexProjectRelativePathRejected(t *testing.T) {
	s := testServer(t, t.TempDir())

	_, err := s.handleIndexProject(context.Background(), callTool(map[string]interface{}{
		"path": "relative/path",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetStatusTool(t *testing.T) {
	s := testServer(t, t.TempDir())

	result, err := s.handleGetStatus(context.Background(), callTool(nil))
	require.NoError(t, err)
	out := resultText(t, result)
	assert.Contains(t, out, `"indexed": false`)
	assert.Contains(t, out, `"provider": "local"`)
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.gd")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.NoError(t, validatePath(dir))
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("relative"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(dir, "missing")), ErrPathNotFound)
	assert.ErrorIs(t, validatePath(file), ErrNotDirectory)
}

func TestGetIntDefault(t *testing.T) {
	// JSON numbers arrive as float64
	args := map[string]interface{}{"k": float64(7)}
	assert.Equal(t, 7, getIntDefault(args, "k", 3))
	assert.Equal(t, 3, getIntDefault(args, "missing", 3))
}

func TestToolSchemas(t *testing.T) {
	assert.Equal(t, "index_project", indexProjectTool().Name)
	assert.Equal(t, "retrieve_context", retrieveContextTool().Name)
	assert.Equal(t, "get_status", getStatusTool().Name)
	assert.Equal(t, []string{"query"}, retrieveContextTool().InputSchema.Required)
}
