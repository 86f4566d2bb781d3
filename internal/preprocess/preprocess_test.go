package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	assert.Equal(t, "hello", Identity("hello", "any/path.txt"))
	assert.Equal(t, "", Identity("", "player.gd"))
}

func TestGodotMetadataHeader(t *testing.T) {
	out := GodotMetadata("extends Node2D", "scripts/player.gd")

	assert.True(t, strings.HasPrefix(out, "File: player.gd\nPath: scripts/player.gd\nType: .gd\n\n"))
	assert.Contains(t, out, "[GDScript File]")
	assert.True(t, strings.HasSuffix(out, "extends Node2D"))
}

func TestGodotMetadataTypeTags(t *testing.T) {
	tests := []struct {
		name    string
		relPath string
		tag     string
	}{
		{"scene file", "levels/main.tscn", "[Godot Scene File]"},
		{"script file", "player.gd", "[GDScript File]"},
		{"resource file", "themes/ui.tres", "[Godot Resource File]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := GodotMetadata("body", tt.relPath)
			assert.Contains(t, out, tt.tag)
		})
	}
}

func TestGodotMetadataNoTagForConfigFiles(t *testing.T) {
	out := GodotMetadata("[application]", "project.godot")

	assert.NotContains(t, out, "[Godot Scene File]")
	assert.NotContains(t, out, "[GDScript File]")
	assert.NotContains(t, out, "[Godot Resource File]")
	assert.Contains(t, out, "File: project.godot\n")
}

func TestGodotMetadataDeterministic(t *testing.T) {
	a := GodotMetadata("var health = 10", "enemy.gd")
	b := GodotMetadata("var health = 10", "enemy.gd")
	assert.Equal(t, a, b)
}
