package ranker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gdassist/gdcontext-mcp/internal/embedder"
	"github.com/gdassist/gdcontext-mcp/internal/keyword"
	"github.com/gdassist/gdcontext-mcp/internal/vecindex"
	"github.com/gdassist/gdcontext-mcp/pkg/types"
)

// ErrInvalidWeight is returned when the semantic weight is outside [0, 1].
var ErrInvalidWeight = errors.New("semantic weight must be in [0, 1]")

// overFetch is the candidate over-fetch factor: each signal retrieves
// overFetch*k candidates before merging, so a document ranked outside the
// top k of one signal can still surface once both signals are combined.
const overFetch = 2

// Ranker merges vector-similarity and keyword relevance into one ranked
// list.
type Ranker struct {
	embedder embedder.Embedder
}

// New creates a Ranker that uses emb to embed query text.
func New(emb embedder.Embedder) *Ranker {
	return &Ranker{embedder: emb}
}

// merged accumulates a document's combined score across candidate sets.
type merged struct {
	position int
	score    float64
}

// Rank returns the top k documents for query, ordered by descending combined
// score. semanticWeight in [0, 1] weighs the vector signal; the keyword
// signal gets the complement. k is clamped to the corpus size (k <= 0 means
// the whole corpus). A signal with zero weight is not executed at all; only
// documents surfaced by at least one executed signal are ranked, with
// zero-score candidates kept at the tail.
func (r *Ranker) Rank(ctx context.Context, query string, corpus *types.Corpus, index *vecindex.Index, k int, semanticWeight float64) ([]types.Document, error) {
	if semanticWeight < 0 || semanticWeight > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeight, semanticWeight)
	}
	if corpus.Len() == 0 {
		return nil, nil
	}

	keywordWeight := 1 - semanticWeight
	if k <= 0 || k > corpus.Len() {
		k = corpus.Len()
	}
	fetch := overFetch * k

	// Candidates are merged by relative path; first-seen order is recorded
	// so map iteration never influences the result.
	scores := make(map[string]*merged)
	var order []string

	if semanticWeight > 0 {
		if err := r.addSemantic(ctx, query, corpus, index, fetch, semanticWeight, scores, &order); err != nil {
			return nil, err
		}
	}

	if keywordWeight > 0 {
		addKeyword(query, corpus, fetch, keywordWeight, scores, &order)
	}

	ranked := make([]*merged, 0, len(order))
	for _, path := range order {
		ranked = append(ranked, scores[path])
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].position < ranked[j].position
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	docs := make([]types.Document, len(ranked))
	for i, m := range ranked {
		docs[i] = corpus.Documents[m.position]
	}
	return docs, nil
}

// addSemantic embeds the query, fetches nearest neighbors, and folds their
// normalized similarity into scores. Distances are inverted into [0, 1]
// relative to the candidate set's own maximum; a lone candidate at distance
// zero normalizes to 1.0 rather than dividing by zero.
func (r *Ranker) addSemantic(ctx context.Context, query string, corpus *types.Corpus, index *vecindex.Index, fetch int, weight float64, scores map[string]*merged, order *[]string) error {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	neighbors, err := index.Search(vector, fetch)
	if err != nil {
		return fmt.Errorf("vector search: %w", err)
	}
	if len(neighbors) == 0 {
		return nil
	}

	var maxDistance float64
	for _, n := range neighbors {
		if n.Distance > maxDistance {
			maxDistance = n.Distance
		}
	}

	for _, n := range neighbors {
		normalized := 1.0
		if maxDistance > 0 {
			normalized = (maxDistance - n.Distance) / maxDistance
		}
		path := corpus.Documents[n.Position].RelativePath
		scores[path] = &merged{position: n.Position, score: normalized * weight}
		*order = append(*order, path)
	}
	return nil
}

// addKeyword scores the corpus by keyword heuristics, keeps the top fetch
// hits, and folds their normalized scores into scores. Normalization divides
// by the candidate set's maximum, guarded against zero.
func addKeyword(query string, corpus *types.Corpus, fetch int, weight float64, scores map[string]*merged, order *[]string) {
	hits := keyword.Rank(query, corpus.Documents)
	if len(hits) > fetch {
		hits = hits[:fetch]
	}
	if len(hits) == 0 {
		return
	}

	maxScore := hits[0].Value // hits are sorted descending

	for _, hit := range hits {
		normalized := 1.0
		if maxScore > 0 {
			normalized = hit.Value / maxScore
		}
		path := corpus.Documents[hit.Position].RelativePath
		if m, ok := scores[path]; ok {
			m.score += normalized * weight
		} else {
			scores[path] = &merged{position: hit.Position, score: normalized * weight}
			*order = append(*order, path)
		}
	}
}
