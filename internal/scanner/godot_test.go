package scanner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanGodot(t *testing.T, root string) map[string]bool {
	t.Helper()
	docs, err := Scan(context.Background(), root, GodotConfig())
	require.NoError(t, err)

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		seen[doc.RelativePath] = true
	}
	return seen
}

func TestGodotConfigPrunesIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "player.gd", []byte("extends Node"))
	writeFile(t, root, ".godot/editor/cache.cfg", []byte("cached"))
	writeFile(t, root, "addons/plugin/tool.gd", []byte("plugin"))
	writeFile(t, root, "__pycache__/stale.cfg", []byte("stale"))

	seen := scanGodot(t, root)
	assert.True(t, seen["player.gd"])
	assert.False(t, seen[".godot/editor/cache.cfg"])
	assert.False(t, seen["addons/plugin/tool.gd"])
	assert.False(t, seen["__pycache__/stale.cfg"])
}

func TestGodotConfigPrunesHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "enemy.gd", []byte("extends Node"))
	writeFile(t, root, ".hidden/secret.gd", []byte("hidden"))

	seen := scanGodot(t, root)
	assert.True(t, seen["enemy.gd"])
	assert.False(t, seen[".hidden/secret.gd"])
}

func TestGodotConfigAllowsProjectFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "project.godot", []byte("[application]\nconfig/name=\"Game\""))
	writeFile(t, root, "sprite.png.import", []byte("[remap]"))

	seen := scanGodot(t, root)
	assert.True(t, seen["project.godot"])
	assert.True(t, seen["sprite.png.import"])
}

func TestGodotConfigSkipsBinaryRes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "theme.tres", []byte("[gd_resource type=\"Theme\"]"))
	writeFile(t, root, "text.res", []byte("[gd_resource]\nreadable text"))
	writeFile(t, root, "packed.res", []byte{'R', 'S', 'R', 'C', 0x00, 0x01, 0xff, 0xfe})

	seen := scanGodot(t, root)
	assert.True(t, seen["theme.tres"])
	assert.True(t, seen["text.res"])
	assert.False(t, seen["packed.res"])
}

func TestProbeTextShortFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tiny.res", []byte("ok"))

	assert.True(t, probeText(filepath.Join(root, "tiny.res")))
}

func TestProbeTextMissingFile(t *testing.T) {
	assert.False(t, probeText(filepath.Join(t.TempDir(), "absent.res")))
}
