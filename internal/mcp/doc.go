// Package mcp implements the Model Context Protocol server surface.
//
// The server speaks JSON-RPC over stdio and exposes three tools:
//
// # index_project
//
// Scans the project tree, embeds every indexable file, and publishes a new
// in-memory index. The previous index keeps serving queries until the new
// one is ready.
//
// Input:
//
//	{
//	  "path": "/abs/path/to/project"   // optional, defaults to the configured root
//	}
//
// Output (JSON):
//
//	{
//	  "indexed": true,
//	  "path": "/abs/path/to/project",
//	  "document_count": 42,
//	  "duration_ms": 1234
//	}
//
// # retrieve_context
//
// Runs a hybrid search over the current index and returns the matching
// documents as one formatted text block, ready to paste into a model
// prompt.
//
// Input:
//
//	{
//	  "query": "player movement",   // required
//	  "k": 5                        // optional, defaults to the configured k
//	}
//
// # get_status
//
// Takes no arguments and returns index statistics as JSON: whether an
// index exists, its document count, the embedding provider and model, and
// the configured search weights.
//
// # Error codes
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32002  indexing already in progress
//	-32004  empty query
//
// Logs go to stderr; stdout carries only protocol frames.
package mcp
