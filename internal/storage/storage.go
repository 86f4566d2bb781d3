package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotFound is returned when no cached vector exists for a key
	ErrNotFound = errors.New("not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
	content_hash TEXT NOT NULL,
	model        TEXT NOT NULL,
	dimension    INTEGER NOT NULL,
	vector       BLOB NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (content_hash, model)
);
`

// Cache is a persistent store of embedding vectors keyed by content hash
// and model name. It memoizes provider calls across index rebuilds so that
// unchanged files never hit the embedding provider twice.
type Cache struct {
	db *sql.DB
}

// Open opens or creates a cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached vector for a content hash and model, or
// ErrNotFound.
func (c *Cache) Get(ctx context.Context, contentHash, model string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT vector FROM embeddings WHERE content_hash = ? AND model = ?",
		contentHash, model,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding: %w", err)
	}
	return deserializeVector(blob), nil
}

// GetBatch looks up many hashes at once and returns hash -> vector for the
// ones present. Missing hashes are simply absent from the result.
func (c *Cache) GetBatch(ctx context.Context, contentHashes []string, model string) (map[string][]float32, error) {
	found := make(map[string][]float32, len(contentHashes))
	for _, hash := range contentHashes {
		vector, err := c.Get(ctx, hash, model)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found[hash] = vector
	}
	return found, nil
}

// Put stores a vector under a content hash and model, replacing any
// previous entry.
func (c *Cache) Put(ctx context.Context, contentHash, model string, vector []float32) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO embeddings (content_hash, model, dimension, vector, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (content_hash, model) DO UPDATE SET
		   dimension = excluded.dimension,
		   vector = excluded.vector,
		   created_at = excluded.created_at`,
		contentHash, model, len(vector), serializeVector(vector), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// PutBatch stores many vectors in one transaction.
func (c *Cache) PutBatch(ctx context.Context, vectors map[string][]float32, model string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (content_hash, model, dimension, vector, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (content_hash, model) DO UPDATE SET
		   dimension = excluded.dimension,
		   vector = excluded.vector,
		   created_at = excluded.created_at`,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for hash, vector := range vectors {
		if _, err := stmt.ExecContext(ctx, hash, model, len(vector), serializeVector(vector), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to store embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Len returns the number of cached vectors.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}
