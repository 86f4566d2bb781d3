package types

// Document is an immutable record created during indexing. Documents are
// append-only within a single index build and replaced wholesale on re-index.
type Document struct {
	// RelativePath is the path relative to the indexed root, slash-separated.
	// It is the unique key for a document within a corpus snapshot.
	RelativePath string

	// AbsolutePath is used only for re-reading and display.
	AbsolutePath string

	// Filename is the final path segment.
	Filename string

	// Content is the file text, possibly prefixed with preprocessor metadata.
	Content string
}

// Corpus holds the full in-memory set of indexed documents plus their
// embedding vectors. The two slices are index-aligned: Vectors[i] is the
// embedding of Documents[i]. Reordering one without the other corrupts
// retrieval, so a Corpus must never be mutated after publication; rebuilds
// construct a new Corpus and swap it in whole.
type Corpus struct {
	Documents []Document
	Vectors   [][]float32
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Documents)
}

// Validate checks the corpus invariants: document/vector alignment, unique
// relative paths, and a consistent embedding dimension.
func (c *Corpus) Validate() error {
	if len(c.Documents) != len(c.Vectors) {
		return ErrCorpusMisaligned
	}

	seen := make(map[string]struct{}, len(c.Documents))
	for _, doc := range c.Documents {
		if _, ok := seen[doc.RelativePath]; ok {
			return ErrDuplicatePath
		}
		seen[doc.RelativePath] = struct{}{}
	}

	if len(c.Vectors) > 0 {
		dim := len(c.Vectors[0])
		for _, v := range c.Vectors[1:] {
			if len(v) != dim {
				return ErrDimensionMismatch
			}
		}
	}

	return nil
}
