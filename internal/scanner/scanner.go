package scanner

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/gdassist/gdcontext-mcp/internal/preprocess"
	"github.com/gdassist/gdcontext-mcp/pkg/types"
)

// IncludeFunc decides whether a directory entry should be scanned. It is
// called for directories before they are descended into; returning false for
// a directory prunes the whole subtree. rel is the slash-separated path
// relative to the scan root, abs the absolute path on disk.
type IncludeFunc func(rel, abs string, d fs.DirEntry) bool

// Config controls a corpus scan. Domain-specific filtering is expressed as
// values (extension list, include predicate, preprocessor) rather than a type
// hierarchy.
type Config struct {
	// Extensions lists accepted file extensions, dot included (".gd").
	// An empty list accepts no files.
	Extensions []string

	// Exclude holds doublestar glob patterns matched against the relative
	// path. Matching directories are pruned, matching files skipped.
	Exclude []string

	// Include is an additional predicate applied to directories and files.
	// Nil accepts everything.
	Include IncludeFunc

	// Preprocess transforms file content before it is stored on the
	// Document. Nil means identity.
	Preprocess preprocess.Func

	// Workers bounds concurrent file reads. Defaults to runtime.NumCPU().
	Workers int
}

type scanEntry struct {
	rel string
	abs string
}

// Scan walks root and produces the document sequence for one corpus build.
// Directory traversal order is stable within a build, which is what the
// corpus alignment invariant requires. A file that cannot be read or is not
// valid UTF-8 text is logged and skipped; it never aborts the scan.
func Scan(ctx context.Context, root string, cfg Config) ([]types.Document, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	extSet := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extSet[ext] = struct{}{}
	}

	entries, err := discover(root, extSet, cfg)
	if err != nil {
		return nil, err
	}

	// Read files concurrently but keep slots index-aligned with the
	// traversal order; unreadable files leave nil slots.
	docs := make([]*types.Document, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, entry := range entries {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			docs[i] = readDocument(entry, cfg.Preprocess)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]types.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			result = append(result, *doc)
		}
	}
	return result, nil
}

// discover enumerates candidate files under root, pruning rejected
// directories so they are never descended into.
func discover(root string, extSet map[string]struct{}, cfg Config) ([]scanEntry, error) {
	var entries []scanEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("scanner: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if excluded(rel, cfg.Exclude) {
				return fs.SkipDir
			}
			if cfg.Include != nil && !cfg.Include(rel, path, d) {
				return fs.SkipDir
			}
			return nil
		}

		if _, ok := extSet[filepath.Ext(d.Name())]; !ok {
			return nil
		}
		if excluded(rel, cfg.Exclude) {
			return nil
		}
		if cfg.Include != nil && !cfg.Include(rel, path, d) {
			return nil
		}

		entries = append(entries, scanEntry{rel: rel, abs: path})
		return nil
	})

	return entries, err
}

// readDocument reads and preprocesses a single file. Returns nil when the
// file should be skipped (unreadable or not decodable as text).
func readDocument(entry scanEntry, pp preprocess.Func) *types.Document {
	raw, err := os.ReadFile(entry.abs)
	if err != nil {
		log.Printf("scanner: skipping %s: %v", entry.abs, err)
		return nil
	}
	if !utf8.Valid(raw) {
		log.Printf("scanner: skipping %s: not valid text", entry.abs)
		return nil
	}

	content := string(raw)
	if pp != nil {
		content = pp(content, entry.rel)
	}

	return &types.Document{
		RelativePath: entry.rel,
		AbsolutePath: entry.abs,
		Filename:     filepath.Base(entry.abs),
		Content:      content,
	}
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// hasHiddenPrefix reports whether name starts with the reserved marker
// character used for hidden files and directories.
func hasHiddenPrefix(name string) bool {
	return strings.HasPrefix(name, ".")
}
