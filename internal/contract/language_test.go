package contract

import (
	"testing"

	"github.com/huangsam/cleanscore/schema"
	"github.com/stretchr/testify/assert"
)

func TestDetermineLanguage(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.go", "Go"},
		{"src/App.CS", "C#"},
		{"web/index.ts", "TypeScript"},
		{"include/util.h", "C/C++"},
		{"config.yml", "YAML"},
		{"build.zig", "ZIG"},
		{"Makefile", schema.UnknownLanguage},
		{"dir.with.dots/README", schema.UnknownLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetermineLanguage(tt.path))
		})
	}
}

func TestIsSourceCode(t *testing.T) {
	for _, path := range []string{"a.go", "b.PY", "c.tsx", "d.sql", "e.toml", "f.dart"} {
		assert.True(t, IsSourceCode(path), path)
	}
	for _, path := range []string{"image.png", "README", "notes.md", "archive.tar.gz", "bin.exe"} {
		assert.False(t, IsSourceCode(path), path)
	}
}
