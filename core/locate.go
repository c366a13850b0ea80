package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// RepoRef identifies one repository discovered from the configured inputs.
type RepoRef struct {
	Name  string // display name, the base name of the root directory
	Path  string // absolute path to the working tree root
	Order int    // position in input-expansion order, shared with InputFailure
}

// InputFailure records an input path that produced no usable repository.
type InputFailure struct {
	Input string
	Err   error
	Order int
}

// LocateRepositories expands the configured input paths into concrete
// repository roots. An input that is itself a working tree root is taken
// as-is; otherwise its subtree is searched up to depth levels. Failures are
// per-input and never abort the batch. Order fields number repos and
// failures through a single sequence so callers can restore the configured
// input order across both lists.
func LocateRepositories(st *schema.Settings) ([]RepoRef, []InputFailure) {
	var repos []RepoRef
	var failures []InputFailure
	seen := make(map[string]bool)
	next := 0

	fail := func(input string, err error) {
		failures = append(failures, InputFailure{Input: input, Err: err, Order: next})
		next++
	}

	for _, input := range st.InputFstrs {
		abs, err := filepath.Abs(input)
		if err != nil {
			fail(input, fmt.Errorf("%w: %q: %v", contract.ErrInvalidRepositoryPath, input, err))
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			fail(input, fmt.Errorf("%w: %q does not exist or is not a directory", contract.ErrInvalidRepositoryPath, input))
			continue
		}

		found := discoverRepos(abs, st.Depth)
		if st.Subfolder != "" {
			found = filterBySubfolder(found, st.Subfolder)
		}
		if len(found) == 0 {
			fail(input, fmt.Errorf("%w: no repository found under %q within depth %d", contract.ErrInvalidRepositoryPath, input, st.Depth))
			continue
		}
		for _, root := range found {
			if seen[root] {
				continue
			}
			seen[root] = true
			repos = append(repos, RepoRef{Name: filepath.Base(root), Path: root, Order: next})
			next++
		}
	}
	return repos, failures
}

// discoverRepos returns repository roots at or below dir, searching up to
// depth directory levels. A found root is not descended into, so nested
// repositories under an outer root are only reported via the outer root.
func discoverRepos(dir string, depth int) []string {
	if isRepoRoot(dir) {
		return []string{dir}
	}
	if depth <= 0 {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var found []string
	for _, name := range names {
		found = append(found, discoverRepos(filepath.Join(dir, name), depth-1)...)
	}
	return found
}

// isRepoRoot reports whether dir is a git working tree root. A .git entry
// may be a directory or, for linked worktrees and submodules, a file.
func isRepoRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// filterBySubfolder retains only repositories containing the given relative path.
func filterBySubfolder(roots []string, subfolder string) []string {
	var kept []string
	for _, root := range roots {
		if _, err := os.Stat(filepath.Join(root, subfolder)); err == nil {
			kept = append(kept, root)
		}
	}
	return kept
}
