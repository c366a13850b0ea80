package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Status labels for console output.
const (
	OkValue     = "ok"
	FailedValue = "failed"
)

// Color variables for console output.
var (
	OkColor     = color.New(color.FgGreen)
	FailedColor = color.New(color.FgRed, color.Bold)
)

// GetPlainStatusLabel returns the plain text status label for a repository
// result. This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatusLabel(success bool) string {
	if success {
		return OkValue
	}
	return FailedValue
}

// GetColorStatusLabel returns a colored status label for console output.
func GetColorStatusLabel(success bool) string {
	if success {
		return OkColor.Sprint(OkValue)
	}
	return FailedColor.Sprint(FailedValue)
}

// SelectOutputFile returns the file to write output to. An empty path selects
// stdout; callers must not close stdout.
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
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s\n", msg)
}

// MatchAnyGlob returns true if the path matches any of the given glob
// patterns. Patterns are tried against the full relative path and against the
// base filename, so "*.min.js" matches files in any directory. Patterns
// ending with '/' are treated as directory prefixes.
func MatchAnyGlob(patterns []string, path string) bool {
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if strings.HasSuffix(pat, "/") {
			if strings.HasPrefix(path, pat) {
				return true
			}
			continue
		}
		// filepath.Match does not cross separators; collapse ** so patterns
		// like "src/**/*.py" behave as users expect for path-level matching.
		p := strings.ReplaceAll(pat, "**", "*")
		if ok, err := filepath.Match(p, path); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(p, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

// NormalizeExtension lowercases an extension and strips any leading dot, so
// the tracked-extension check is insensitive to both.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// HasTrackedExtension reports whether the path's extension is in the tracked
// set. A "*" entry tracks every extension, including none at all.
func HasTrackedExtension(path string, extensions []string) bool {
	ext := NormalizeExtension(filepath.Ext(path))
	for _, tracked := range extensions {
		tracked = NormalizeExtension(tracked)
		if tracked == "*" || tracked == ext {
			return true
		}
	}
	return false
}

// TruncatePath shortens a path to maxWidth runes, keeping the tail visible.
func TruncatePath(path string, maxWidth int) string {
	if maxWidth <= 3 || len(path) <= maxWidth {
		return path
	}
	return "..." + path[len(path)-maxWidth+3:]
}

// DefaultCacheDBPath returns the path to the SQLite DB file for result caching.
func DefaultCacheDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitattrib_cache.db"
	}
	return filepath.Join(homeDir, ".gitattrib_cache.db")
}

// DefaultHistoryDBPath returns the path to the SQLite DB file for run history.
func DefaultHistoryDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitattrib_history.db"
	}
	return filepath.Join(homeDir, ".gitattrib_history.db")
}
