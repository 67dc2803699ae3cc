package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath checks the width bound holds for arbitrary input.
func FuzzTruncatePath(f *testing.F) {
	seeds := []struct {
		path  string
		width int
	}{
		{"main.go", 40},
		{"very/long/path/to/some/deeply/nested/file.go", 10},
		{"", 5},
		{"日本語/ファイル.go", 6},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.width)
	}

	f.Fuzz(func(t *testing.T, path string, width int) {
		if !utf8.ValidString(path) || width < 4 || width > 512 {
			return
		}
		got := TruncatePath(path, width)
		if utf8.RuneCountInString(got) > width {
			t.Fatalf("TruncatePath(%q, %d) = %q exceeds width", path, width, got)
		}
	})
}

// FuzzDetermineLanguage ensures every path maps to a non-empty language name.
func FuzzDetermineLanguage(f *testing.F) {
	for _, seed := range []string{"main.go", "Makefile", "a.b.c.zig", ".gitignore", ""} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, path string) {
		if DetermineLanguage(path) == "" && path != "" {
			t.Fatalf("DetermineLanguage(%q) returned empty", path)
		}
	})
}
