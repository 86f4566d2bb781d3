package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/gdassist/gdcontext-mcp/internal/config"
	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/retriever"
	"github.com/gdassist/gdcontext-mcp/internal/scanner"
	"github.com/gdassist/gdcontext-mcp/internal/storage"
)

// gdindex indexes a Godot project and runs a single query from the command
// line. It is meant for trying out providers and search weights without a
// connected MCP client.
func main() {
	var (
		configPath = flag.String("config", "", "path to gdcontext.yaml")
		root       = flag.String("root", ".", "Godot project root")
		query      = flag.String("query", "", "query to run after indexing")
		k          = flag.Int("k", 0, "number of documents to return")
		weight     = flag.Float64("weight", -1, "semantic weight (0-1), overrides config")
		noCache    = flag.Bool("no-cache", false, "disable the persistent embedding cache")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *weight >= 0 {
		cfg.Search.SemanticWeight = *weight
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	defer func() { _ = emb.Close() }()

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

	if !*noCache && !cfg.Cache.Disabled {
		cache, err := storage.Open(cfg.Cache.Path)
		if err != nil {
			log.Printf("embedding cache unavailable: %v", err)
		} else {
			defer func() { _ = cache.Close() }()
			opts = append(opts, retriever.WithEmbeddingCache(cache))
		}
	}

	// Show a progress bar only on interactive terminals
	if term.IsTerminal(int(os.Stderr.Fd())) {
		var bar *progressbar.ProgressBar
		opts = append(opts, retriever.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("embedding"),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}))
	}

	r := retriever.New(emb, scanCfg, opts...)

	absRoot, err := filepath.Abs(*root)
	if err != nil {
		log.Fatalf("Failed to resolve root: %v", err)
	}

	count, err := r.Index(context.Background(), absRoot)
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}
	log.Printf("indexed %d documents (provider: %s, model: %s)", count, emb.Provider(), emb.Model())

	if *query == "" {
		return
	}

	out, err := r.Retrieve(context.Background(), *query, *k)
	if err != nil {
		log.Fatalf("Retrieval failed: %v", err)
	}
	fmt.Println(out)
}

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
