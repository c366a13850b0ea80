// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/gitattrib/gitattrib/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResult prints the analysis result as human-readable tables.
func (ow *OutWriter) WriteResult(w io.Writer, result *schema.AnalysisResult, st *schema.Settings, duration time.Duration) error {
	return writeResultTables(w, result, st, duration)
}

// WriteResultFiles writes the analysis result to files in every configured
// file format, one set of files per repository.
func (ow *OutWriter) WriteResultFiles(result *schema.AnalysisResult, st *schema.Settings) error {
	return writeResultFiles(result, st)
}

// WriteSettingsJSON writes a settings snapshot as indented JSON.
func WriteSettingsJSON(w io.Writer, settings *schema.Settings) error {
	return writeJSON(w, settings)
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table
// output based on terminal width. A positive width argument overrides
// detection.
func GetMaxTablePathWidth(width int) int {
	termWidth := width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Conservative default for narrow terminals and CI
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns (Rank + Lines + Commits + Authors
	// + Percent) with borders and padding.
	baseWidth := 45

	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable path width
		return 15
	}
	if available > 70 {
		// Maximum path width to prevent overly long paths
		return 70
	}
	return available
}
