// Package retriever is the top-level facade of the engine. It wires the
// scanner, embedder, vector index, and hybrid ranker together: Index
// rebuilds an in-memory snapshot from the filesystem and publishes it
// atomically, and Retrieve answers queries against the current snapshot
// as a formatted text block.
package retriever
