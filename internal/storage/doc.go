// Package storage provides an optional SQLite-backed cache of embedding
// vectors keyed by content hash and model. The search index itself is
// always rebuilt in memory from the filesystem; the cache only spares
// repeated provider calls for unchanged content.
//
// Build tags select the SQLite driver: the default purego build uses
// modernc.org/sqlite, while -tags sqlite_cgo uses github.com/mattn/go-sqlite3.
package storage
