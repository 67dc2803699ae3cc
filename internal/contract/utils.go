package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cleanscore/schema"
)

// Color variables for console output.
var (
	ExcellentColor   = color.New(color.FgGreen, color.Bold)   // ExcellentColor marks the top tier.
	VeryGoodColor    = color.New(color.FgGreen)               // VeryGoodColor is a plain success signal.
	GoodColor        = color.New(color.FgCyan)                // GoodColor is informational.
	AcceptableColor  = color.New(color.FgYellow)              // AcceptableColor is standard caution.
	NeedsWorkColor   = color.New(color.FgMagenta, color.Bold) // NeedsWorkColor is a strong warning.
	ProblematicColor = color.New(color.FgRed, color.Bold)     // ProblematicColor is standard danger.
)

// GetColorLabel returns a colored quality label for console output (table).
func GetColorLabel(q schema.Quality) string {
	text := string(q)
	switch q {
	case schema.QualityExcellent:
		return ExcellentColor.Sprint(text)
	case schema.QualityVeryGood:
		return VeryGoodColor.Sprint(text)
	case schema.QualityGood:
		return GoodColor.Sprint(text)
	case schema.QualityAcceptable:
		return AcceptableColor.Sprint(text)
	case schema.QualityNeedsImprovement:
		return NeedsWorkColor.Sprint(text)
	case schema.QualityProblematic:
		return ProblematicColor.Sprint(text)
	default:
		return text
	}
}

// GetScoreColorLabel colors a single 1-10 criterion score by the tier it would map to.
func GetScoreColorLabel(score int) string {
	return colorFor(schema.QualityForNote(float64(score))).Sprint(score)
}

func colorFor(q schema.Quality) *color.Color {
	switch q {
	case schema.QualityExcellent:
		return ExcellentColor
	case schema.QualityVeryGood:
		return VeryGoodColor
	case schema.QualityGood:
		return GoodColor
	case schema.QualityAcceptable:
		return AcceptableColor
	case schema.QualityNeedsImprovement:
		return NeedsWorkColor
	default:
		return ProblematicColor
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cleanscore_analysis.db"
	}
	return filepath.Join(homeDir, ".cleanscore_analysis.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// maxWidth must be greater than 3 to leave room for the prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// TruncateText shortens free text to maxWidth runes with an ellipsis suffix.
func TruncateText(text string, maxWidth int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ShortCommitID returns the first 8 characters of a commit hash.
func ShortCommitID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
