package mcp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gdassist/gdcontext-mcp/internal/config"
	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/retriever"
	"github.com/gdassist/gdcontext-mcp/internal/scanner"
	"github.com/gdassist/gdcontext-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "gdcontext-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	retriever *retriever.Retriever
	embedder  embedder.Embedder
	cache     *storage.Cache
	root      string
}

// NewServer creates a new MCP server instance from the given configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	scanCfg := scanner.GodotConfig()
	if len(cfg.Project.Extensions) > 0 {
		scanCfg.Extensions = cfg.Project.Extensions
	}
	scanCfg.Exclude = append(scanCfg.Exclude, cfg.Project.Exclude...)

	opts := []retriever.Option{
		retriever.WithSemanticWeight(cfg.Search.SemanticWeight),
		retriever.WithDefaultK(cfg.Search.DefaultK),
		retriever.WithBatchSize(cfg.Embedding.BatchSize),
	}

	// The persistent cache is optional; a broken cache file should not
	// prevent the server from starting.
	var cache *storage.Cache
	if !cfg.Cache.Disabled {
		cache, err = storage.Open(cfg.Cache.Path)
		if err != nil {
			log.Printf("embedding cache unavailable at %s: %v", cfg.Cache.Path, err)
		} else {
			opts = append(opts, retriever.WithEmbeddingCache(cache))
		}
	}

	root, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		retriever: retriever.New(emb, scanCfg, opts...),
		embedder:  emb,
		cache:     cache,
		root:      root,
	}

	s.registerTools()
	return s, nil
}

// newEmbedder builds the provider from config, falling back to environment
// detection when none is configured.
func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if cfg.Embedding.Provider == "" {
		return embedder.NewFromEnv()
	}
	return embedder.New(embedder.Config{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		OllamaHost: cfg.Embedding.OllamaHost,
		CacheSize:  cfg.Embedding.CacheSize,
	})
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.close()
	return server.ServeStdio(s.mcp)
}

func (s *Server) close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	_ = s.embedder.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexProjectTool(), s.handleIndexProject)
	s.mcp.AddTool(retrieveContextTool(), s.handleRetrieveContext)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
