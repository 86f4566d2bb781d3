// Package preprocess transforms document content before it is embedded and
// indexed. Preprocessors are pure functions of (content, path): the same
// inputs always yield the same output, with no side effects.
package preprocess

import (
	"fmt"
	"path"
	"strings"
)

// Func transforms file content before indexing. relPath is the document's
// slash-separated path relative to the indexed root.
type Func func(content, relPath string) string

// Identity returns the content unchanged.
func Identity(content, _ string) string {
	return content
}

// GodotMetadata prepends a metadata header (filename, path, type tag) so that
// filename and file-type signals are visible to both the vector embedding and
// the keyword scorer even when absent from the body text.
func GodotMetadata(content, relPath string) string {
	ext := path.Ext(relPath)

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nPath: %s\nType: %s\n\n", path.Base(relPath), relPath, ext)

	switch ext {
	case ".tscn":
		b.WriteString("[Godot Scene File]\n\n")
	case ".gd":
		b.WriteString("[GDScript File]\n\n")
	case ".tres":
		b.WriteString("[Godot Resource File]\n\n")
	}

	b.WriteString(content)
	return b.String()
}
