//go:build basic

// Package integration contains end-to-end tests for the gitattrib CLI.
// These tests are excluded from normal test runs due to build tags.
// To run them: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunOnFixtureRepo runs a full analysis against a throwaway repository
// and checks the printed tables and the JSON export.
func TestRunOnFixtureRepo(t *testing.T) {
	repoDir := makeFixtureRepo(t)
	outDir := t.TempDir()
	outBase := filepath.Join(outDir, "result")

	output, err := runGitattribCommand(t, repoDir,
		"run", ".",
		"--file-formats", "json",
		"--outfile-base", outBase,
		"--fix", "nofix",
		"--n-files", "0")
	require.NoError(t, err)

	assert.Contains(t, output, "Alice")
	assert.Contains(t, output, "Bob")
	assert.Contains(t, output, "main.py")
	assert.Contains(t, output, "util.py")
	assert.Contains(t, output, "Analyzed 1 repositories")

	data, err := os.ReadFile(outBase + ".json")
	require.NoError(t, err)

	var repo struct {
		Name        string `json:"name"`
		AuthorStats []struct {
			Author     string  `json:"author"`
			Lines      int     `json:"lines"`
			Percentage float64 `json:"percentage"`
		} `json:"author_stats"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(data, &repo))
	assert.True(t, repo.Success)
	require.Len(t, repo.AuthorStats, 2)

	// Author percentages must account for all surviving lines.
	total := 0.0
	for _, a := range repo.AuthorStats {
		total += a.Percentage
	}
	assert.InDelta(t, 100.0, total, 0.01)
}

// TestRunDryRunValidatesOnly checks that the highest dry-run level only
// validates settings.
func TestRunDryRunValidatesOnly(t *testing.T) {
	repoDir := makeFixtureRepo(t)

	output, err := runGitattribCommand(t, repoDir, "run", ".", "--dryrun", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Settings are valid.")
}

// TestRunFailsOnMissingRepo checks the exit code and error reporting for a
// nonexistent input path.
func TestRunFailsOnMissingRepo(t *testing.T) {
	workDir := t.TempDir()

	output, err := runGitattribCommand(t, workDir, "run", "/no/such/path")
	require.Error(t, err)
	assert.Contains(t, output, "invalid repository path")
}

// TestVersionCommand checks the version banner.
func TestVersionCommand(t *testing.T) {
	output, err := runGitattribCommand(t, ".", "version")
	require.NoError(t, err)
	assert.Contains(t, output, "gitattrib CLI")
	assert.Contains(t, output, "Runtime:")
}
