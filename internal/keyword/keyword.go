// Package keyword scores documents against a query with filename, path, and
// content term-matching heuristics. Filenames are a stronger relevance
// signal than body text in a project tree, so filename hits dominate the
// weights.
package keyword

import (
	"sort"
	"strings"

	"github.com/gdassist/gdcontext-mcp/pkg/types"
)

// Matching weights. An exact filename substring hit outweighs everything
// else; content occurrences only matter in volume.
const (
	filenameExactWeight = 10.0
	filenameTermWeight  = 5.0
	pathExactWeight     = 3.0
	contentTermWeight   = 0.1
)

// Score pairs a corpus position with a keyword relevance value (> 0).
type Score struct {
	Position int
	Value    float64
}

// Rank scores every document against query and returns the hits in
// descending score order, ties broken by corpus position. Documents with a
// zero score are excluded entirely. An empty query scores zero for every
// document and therefore returns nil.
func Rank(query string, docs []types.Document) []Score {
	if query == "" {
		return nil
	}

	q := strings.ToLower(query)
	terms := strings.Fields(q)

	var scored []Score
	for i, doc := range docs {
		value := scoreDocument(q, terms, &doc)
		if value > 0 {
			scored = append(scored, Score{Position: i, Value: value})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Value > scored[j].Value
	})
	return scored
}

func scoreDocument(q string, terms []string, doc *types.Document) float64 {
	var score float64

	filename := strings.ToLower(doc.Filename)
	if strings.Contains(filename, q) {
		score += filenameExactWeight
	}
	for _, term := range terms {
		if strings.Contains(filename, term) {
			score += filenameTermWeight
		}
	}

	if strings.Contains(strings.ToLower(doc.RelativePath), q) {
		score += pathExactWeight
	}

	content := strings.ToLower(doc.Content)
	for _, term := range terms {
		score += float64(strings.Count(content, term)) * contentTermWeight
	}

	return score
}
