// Package types provides shared type definitions for the gdcontext MCP server.
//
// The central types are Document, an immutable record produced by the corpus
// scanner, and Corpus, the full in-memory set of indexed documents plus their
// embedding vectors.
//
// # Alignment Invariant
//
// A Corpus keeps documents and vectors in two parallel slices aligned by
// position:
//
//	corpus.Vectors[i] // embedding of corpus.Documents[i]
//
// Every retrieval component relies on this alignment. A Corpus is built once,
// validated, published as an immutable snapshot, and only ever replaced
// wholesale:
//
//	corpus := &types.Corpus{Documents: docs, Vectors: vectors}
//	if err := corpus.Validate(); err != nil {
//	    return err
//	}
package types
