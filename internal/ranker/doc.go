// Package ranker combines vector-similarity search and keyword scoring into
// a single hybrid ranking. Each signal produces its own over-fetched
// candidate set, scores are normalized within each set, and the weighted
// results are merged per document before the final top-k cut.
package ranker
