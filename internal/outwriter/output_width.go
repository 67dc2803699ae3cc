package outwriter

import (
	"os"

	"github.com/huangsam/cleanscore/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the fixed score columns.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Five scores, note, quality and +/- lines, with borders and padding
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// getMaxTableTextWidth is the width left for free text such as suggestion titles.
func getMaxTableTextWidth(cfg *contract.Config) int {
	return GetMaxTablePathWidth(cfg) + 10
}
