package scanner

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gdassist/gdcontext-mcp/internal/preprocess"
)

// GodotExtensions lists the file types indexed for a Godot project.
var GodotExtensions = []string{
	".gd",     // GDScript
	".tscn",   // scene files
	".tres",   // text resources
	".res",    // binary-capable resources, probed before indexing
	".godot",  // project configuration
	".cfg",    // configuration files
	".import", // import configuration
}

// probeSize is how many bytes of a .res file are inspected to decide whether
// it is text or binary.
const probeSize = 100

// godotIgnoreDirs are directory names skipped outright: editor caches,
// dependency/plugin directories, and tooling leftovers.
var godotIgnoreDirs = map[string]struct{}{
	".godot":      {},
	"addons":      {},
	".import":     {},
	"__pycache__": {},
}

// GodotConfig returns the scanner configuration for a Godot project tree.
func GodotConfig() Config {
	return Config{
		Extensions: GodotExtensions,
		Include:    godotInclude,
		Preprocess: preprocess.GodotMetadata,
	}
}

// godotInclude applies the Godot filtering rules. Directories are pruned when
// hidden or on the ignore list. Hidden files are skipped except the
// allow-listed project.godot and *.import files. Binary .res files are
// detected by probe-reading a small prefix.
func godotInclude(rel, abs string, d fs.DirEntry) bool {
	name := d.Name()

	if d.IsDir() {
		if _, ok := godotIgnoreDirs[name]; ok {
			return false
		}
		return !hasHiddenPrefix(name)
	}

	if hasHiddenPrefix(name) && name != "project.godot" && !strings.HasSuffix(name, ".import") {
		return false
	}

	if filepath.Ext(name) == ".res" {
		return probeText(abs)
	}

	return true
}

// probeText reads the first probeSize bytes and reports whether they look
// like decodable text.
func probeText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, probeSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	buf = buf[:n]

	if bytes.IndexByte(buf, 0) >= 0 {
		return false
	}

	// The probe may have cut a multi-byte rune at the buffer edge; trim up
	// to utf8.UTFMax-1 trailing bytes before declaring the prefix invalid.
	for i := 0; i < utf8.UTFMax && len(buf) > 0; i++ {
		if utf8.Valid(buf) {
			return true
		}
		buf = buf[:len(buf)-1]
	}
	return utf8.Valid(buf)
}
