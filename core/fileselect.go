package core

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// lineCounter reports the surviving line count of a tracked file, used to
// rank candidates before truncation. Implementations return 0 for files
// they cannot read.
type lineCounter func(path string) int

// selectFiles filters the tracked file list down to the analysis candidates
// and caps the set at n_files. Candidates must carry a tracked extension,
// match any include_files glob when provided, and match no ex_files glob.
// Ranking is by descending surviving line count with lexical-path tie-breaks
// so the selection is deterministic.
func selectFiles(files []string, st *schema.Settings, count lineCounter) []string {
	candidates := make([]string, 0, len(files))
	for _, f := range files {
		if !contract.HasTrackedExtension(f, st.Extensions) {
			continue
		}
		if len(st.IncludeFiles) > 0 && !contract.MatchAnyGlob(st.IncludeFiles, f) {
			continue
		}
		if contract.MatchAnyGlob(st.ExFiles, f) {
			continue
		}
		candidates = append(candidates, f)
	}

	lines := make(map[string]int, len(candidates))
	for _, f := range candidates {
		lines[f] = count(f)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if lines[candidates[i]] != lines[candidates[j]] {
			return lines[candidates[i]] > lines[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if st.NFiles > 0 && len(candidates) > st.NFiles {
		candidates = candidates[:st.NFiles]
	}
	return candidates
}

// worktreeLineCounter counts lines by reading files from the working tree,
// which tracks HEAD for the analysis entry point.
func worktreeLineCounter(root string) lineCounter {
	return func(path string) int {
		data, err := os.ReadFile(filepath.Join(root, path))
		if err != nil {
			return 0
		}
		if len(data) == 0 {
			return 0
		}
		n := bytes.Count(data, []byte{'\n'})
		if data[len(data)-1] != '\n' {
			n++
		}
		return n
	}
}
