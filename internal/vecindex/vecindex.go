// Package vecindex provides a flat in-memory nearest-neighbor index over
// embedding vectors using Euclidean (L2) distance.
//
// The index is built once per corpus and queried read-only afterwards.
// Positions returned by Search refer to the vector's position at build time,
// which is also the position of the matching document in the corpus.
package vecindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdassist/gdcontext-mcp/pkg/types"
)

// Index holds one embedding per document. It is immutable after Build.
type Index struct {
	vectors [][]float32
	dim     int
}

// Neighbor is a single nearest-neighbor hit. Position is the vector's build
// position; Distance is the L2 distance to the query (smaller is closer).
type Neighbor struct {
	Position int
	Distance float64
}

// Build creates an index over vectors. Building with zero vectors yields an
// empty index whose queries return empty results without error. All vectors
// must share one dimension.
func Build(vectors [][]float32) (*Index, error) {
	ix := &Index{vectors: vectors}
	if len(vectors) == 0 {
		return ix, nil
	}

	ix.dim = len(vectors[0])
	for i, v := range vectors {
		if len(v) != ix.dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w",
				i, len(v), ix.dim, types.ErrDimensionMismatch)
		}
	}
	return ix, nil
}

// Search returns the k nearest vectors to query, ascending by distance.
// k is clamped to the index size; k <= 0 also means the full index. Ties
// break by build position so results are deterministic.
func (ix *Index) Search(query []float32, k int) ([]Neighbor, error) {
	if len(ix.vectors) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d: %w",
			len(query), ix.dim, types.ErrDimensionMismatch)
	}

	if k <= 0 || k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	neighbors := make([]Neighbor, len(ix.vectors))
	for i, v := range ix.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: euclidean(query, v)}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Position < neighbors[j].Position
	})

	return neighbors[:k], nil
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Dimension returns the embedding dimension, 0 for an empty index.
func (ix *Index) Dimension() int {
	return ix.dim
}

// euclidean computes the L2 distance between two equal-length vectors.
func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
