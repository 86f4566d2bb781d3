// Package embedder generates vector embeddings for document text.
//
// Three providers are supported: OpenAI (remote API), Ollama (local model
// server), and a deterministic hash-based local provider for offline use and
// tests. All providers satisfy the Embedder interface and are deterministic
// for a fixed model: the same text always yields the same vector.
//
// # Provider Selection
//
// The factory selects a provider from the environment:
//
//  1. GDCONTEXT_EMBEDDING_PROVIDER (openai, ollama, local)
//  2. OPENAI_API_KEY set -> openai
//  3. OLLAMA_HOST set -> ollama
//  4. fallback -> local
//
// # Caching and Retries
//
// Every provider shares an LRU result cache keyed by the SHA-256 of the
// input text, and remote providers retry transient API failures with
// exponential backoff. Retries stop immediately on context cancellation.
//
// # Failure Semantics
//
// A batch either succeeds whole or fails whole. Callers building an index
// must treat a batch failure as a failure of the entire index build; there
// is no partial-embedding recovery.
package embedder
