package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/ranker"
	"github.com/gdassist/gdcontext-mcp/internal/scanner"
	"github.com/gdassist/gdcontext-mcp/internal/storage"
	"github.com/gdassist/gdcontext-mcp/internal/vecindex"
	"github.com/gdassist/gdcontext-mcp/pkg/types"
)

var (
	// ErrIndexInProgress is returned when a rebuild is already running
	ErrIndexInProgress = errors.New("indexing already in progress")
	// ErrEmptyQuery is returned when a retrieval query is empty
	ErrEmptyQuery = errors.New("query cannot be empty")
)

const (
	// DefaultK is the number of documents returned when the caller does
	// not specify one.
	DefaultK = 3

	// DefaultSemanticWeight balances the vector signal against the
	// keyword signal.
	DefaultSemanticWeight = 0.7

	// NotIndexedMessage is returned by Retrieve before any index exists.
	NotIndexedMessage = "No documents have been indexed yet."
)

// snapshot is one immutable generation of the index. Readers load it
// atomically, so retrieval never observes a half-built corpus.
type snapshot struct {
	corpus  *types.Corpus
	index   *vecindex.Index
	root    string
	builtAt time.Time
}

// Retriever scans a project tree, embeds its documents, and answers
// retrieval queries against the in-memory index. The index lives only in
// memory and is rebuilt from the filesystem by each Index call.
type Retriever struct {
	embedder       embedder.Embedder
	ranker         *ranker.Ranker
	scanCfg        scanner.Config
	cache          *storage.Cache
	batchSize      int
	defaultK       int
	semanticWeight float64
	progress       func(done, total int)

	current atomic.Pointer[snapshot]
	lock    rebuildLock
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithSemanticWeight sets the hybrid ranking weight for the vector signal.
func WithSemanticWeight(w float64) Option {
	return func(r *Retriever) { r.semanticWeight = w }
}

// WithDefaultK sets how many documents Retrieve returns when k <= 0.
func WithDefaultK(k int) Option {
	return func(r *Retriever) { r.defaultK = k }
}

// WithEmbeddingCache attaches a persistent embedding cache. The cache is
// best-effort: failures are logged and indexing continues.
func WithEmbeddingCache(cache *storage.Cache) Option {
	return func(r *Retriever) { r.cache = cache }
}

// WithBatchSize sets how many documents are embedded per provider call.
func WithBatchSize(n int) Option {
	return func(r *Retriever) { r.batchSize = n }
}

// WithProgress installs a callback invoked after each embedded batch.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Retriever) { r.progress = fn }
}

// New creates a Retriever that scans with scanCfg and embeds with emb.
func New(emb embedder.Embedder, scanCfg scanner.Config, opts ...Option) *Retriever {
	r := &Retriever{
		embedder:       emb,
		ranker:         ranker.New(emb),
		scanCfg:        scanCfg,
		batchSize:      embedder.DefaultBatchSize,
		defaultK:       DefaultK,
		semanticWeight: DefaultSemanticWeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index rebuilds the index from the files under root and atomically
// publishes the new snapshot. It returns the number of indexed documents.
// Only one rebuild may run at a time; concurrent calls get
// ErrIndexInProgress. Any embedding failure fails the whole rebuild and
// leaves the previous snapshot in place.
func (r *Retriever) Index(ctx context.Context, root string) (int, error) {
	if !r.lock.TryAcquire() {
		return 0, ErrIndexInProgress
	}
	defer r.lock.Release()

	start := time.Now()

	docs, err := scanner.Scan(ctx, root, r.scanCfg)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", root, err)
	}

	vectors, err := r.embedAll(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}

	corpus := &types.Corpus{Documents: docs, Vectors: vectors}
	if err := corpus.Validate(); err != nil {
		return 0, err
	}

	index, err := vecindex.Build(vectors)
	if err != nil {
		return 0, fmt.Errorf("build vector index: %w", err)
	}

	r.current.Store(&snapshot{
		corpus:  corpus,
		index:   index,
		root:    root,
		builtAt: time.Now().UTC(),
	})

	log.Printf("indexed %d documents from %s in %s", len(docs), root, time.Since(start).Round(time.Millisecond))
	return len(docs), nil
}

// embedAll produces one vector per document, consulting the persistent
// cache first and embedding only the misses.
func (r *Retriever) embedAll(ctx context.Context, docs []types.Document) ([][]float32, error) {
	vectors := make([][]float32, len(docs))
	if len(docs) == 0 {
		return vectors, nil
	}

	hashes := make([]string, len(docs))
	for i, doc := range docs {
		hashes[i] = embedder.ComputeHash(doc.Content)
	}

	var cached map[string][]float32
	if r.cache != nil {
		var err error
		cached, err = r.cache.GetBatch(ctx, hashes, r.embedder.Model())
		if err != nil {
			log.Printf("embedding cache lookup failed: %v", err)
		}
	}

	// Empty files are valid corpus members but the provider rejects empty
	// input, so they get a zero vector instead of a provider call.
	missing := make([]int, 0, len(docs))
	empty := make([]int, 0)
	for i := range docs {
		switch {
		case docs[i].Content == "":
			empty = append(empty, i)
		case cached[hashes[i]] != nil:
			vectors[i] = cached[hashes[i]]
		default:
			missing = append(missing, i)
		}
	}

	if r.progress != nil {
		r.progress(len(docs)-len(missing), len(docs))
	}

	batchSize := r.batchSize
	if batchSize <= 0 || batchSize > embedder.MaxBatchSize {
		batchSize = embedder.DefaultBatchSize
	}

	fresh := make(map[string][]float32)
	for lo := 0; lo < len(missing); lo += batchSize {
		hi := lo + batchSize
		if hi > len(missing) {
			hi = len(missing)
		}
		batch := missing[lo:hi]

		texts := make([]string, len(batch))
		for j, i := range batch {
			texts[j] = docs[i].Content
		}

		embedded, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		for j, i := range batch {
			vectors[i] = embedded[j]
			fresh[hashes[i]] = embedded[j]
		}

		if r.progress != nil {
			r.progress(len(docs)-len(missing)+hi, len(docs))
		}
	}

	if r.cache != nil && len(fresh) > 0 {
		if err := r.cache.PutBatch(ctx, fresh, r.embedder.Model()); err != nil {
			log.Printf("embedding cache store failed: %v", err)
		}
	}

	// Zero vectors must match the corpus dimension or validation fails.
	if len(empty) > 0 {
		dim := r.embedder.Dimension()
		for _, v := range vectors {
			if v != nil {
				dim = len(v)
				break
			}
		}
		for _, i := range empty {
			vectors[i] = make([]float32, dim)
		}
	}

	return vectors, nil
}

// Retrieve runs a hybrid search and returns the matching documents as one
// formatted text block. k <= 0 uses the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	snap := r.current.Load()
	if snap == nil || snap.corpus.Len() == 0 {
		return NotIndexedMessage, nil
	}

	if k <= 0 {
		k = r.defaultK
	}

	docs, err := r.ranker.Rank(ctx, query, snap.corpus, snap.index, k, r.semanticWeight)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return fmt.Sprintf("No relevant documents found for query: '%s'", query), nil
	}

	blocks := make([]string, len(docs))
	for i, doc := range docs {
		blocks[i] = fmt.Sprintf("--- Document %d: %s ---\n%s\n--- End of %s ---\n",
			i+1, doc.RelativePath, doc.Content, doc.Filename)
	}
	return strings.Join(blocks, "\n"), nil
}

// DocumentCount returns the number of documents in the current snapshot.
func (r *Retriever) DocumentCount() int {
	if snap := r.current.Load(); snap != nil {
		return snap.corpus.Len()
	}
	return 0
}

// Stats describes the current index generation.
type Stats struct {
	Indexed        bool      `json:"indexed"`
	DocumentCount  int       `json:"document_count"`
	Root           string    `json:"root,omitempty"`
	BuiltAt        time.Time `json:"built_at,omitempty"`
	Dimension      int       `json:"dimension"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	SemanticWeight float64   `json:"semantic_weight"`
	DefaultK       int       `json:"default_k"`
	CacheEnabled   bool      `json:"cache_enabled"`
}

// Stats reports the state of the retriever for diagnostics.
func (r *Retriever) Stats() Stats {
	stats := Stats{
		Dimension:      r.embedder.Dimension(),
		Provider:       r.embedder.Provider(),
		Model:          r.embedder.Model(),
		SemanticWeight: r.semanticWeight,
		DefaultK:       r.defaultK,
		CacheEnabled:   r.cache != nil,
	}
	if snap := r.current.Load(); snap != nil {
		stats.Indexed = true
		stats.DocumentCount = snap.corpus.Len()
		stats.Root = snap.root
		stats.BuiltAt = snap.builtAt
	}
	return stats
}
