package contract

import (
	"path/filepath"
	"strings"

	"github.com/huangsam/cleanscore/schema"
)

var languageByExt = map[string]string{
	".cs":    "C#",
	".java":  "Java",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".py":    "Python",
	".rb":    "Ruby",
	".php":   "PHP",
	".go":    "Go",
	".c":     "C",
	".cpp":   "C++",
	".h":     "C/C++",
	".swift": "Swift",
	".kt":    "Kotlin",
	".rs":    "Rust",
	".sh":    "Shell",
	".pl":    "Perl",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".less":  "LESS",
	".xml":   "XML",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
}

var sourceCodeExts = map[string]struct{}{}

func init() {
	for _, ext := range []string{
		".cs", ".java", ".js", ".ts", ".py", ".rb", ".php", ".go",
		".c", ".cpp", ".cc", ".cxx", ".h", ".hpp", ".hxx",
		".swift", ".kt", ".rs", ".scala", ".clj", ".hs", ".ml",
		".pl", ".pm", ".r", ".m", ".mm", ".f", ".f90", ".f95",
		".html", ".htm", ".css", ".scss", ".sass", ".less",
		".jsx", ".tsx", ".vue", ".svelte",
		".sh", ".bash", ".zsh", ".fish", ".ps1", ".bat", ".cmd",
		".sql", ".xml", ".json", ".yaml", ".yml", ".toml",
		".dart",
		".lua", ".vim", ".el", ".lisp", ".scm", ".rkt",
	} {
		sourceCodeExts[ext] = struct{}{}
	}
}

// DetermineLanguage maps a path to a language name by its extension.
// Unmapped extensions become their uppercased name, e.g. "foo.zig" is "ZIG".
func DetermineLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" || ext == "." {
		return schema.UnknownLanguage
	}
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

// IsSourceCode reports whether a path looks like source code worth analyzing.
func IsSourceCode(path string) bool {
	_, ok := sourceCodeExts[strings.ToLower(filepath.Ext(path))]
	return ok
}
