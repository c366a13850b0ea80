package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitattrib/gitattrib/schema"
)

func sampleRepoResult() schema.RepoResult {
	return schema.RepoResult{
		Name: "demo",
		Path: "/tmp/demo",
		AuthorStats: []schema.AuthorStat{
			{Author: "Alice", Email: "alice@example.com", Commits: 2, Insertions: 10, Files: 1, Lines: 10, Percentage: 66.667},
			{Author: "Bob", Email: "bob@example.com", Commits: 1, Insertions: 5, Files: 1, Lines: 5, Percentage: 33.333},
		},
		FileStats: []schema.FileStat{
			{Path: "src/main.py", Lines: 15, Commits: 3, Authors: 2, Percentage: 100},
		},
		BlameEntries: []schema.BlameEntry{
			{
				Path:       "src/main.py",
				LineNumber: 1,
				Author:     "Alice",
				Email:      "alice@example.com",
				CommitHash: "aaaa",
				CommitTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				Content:    "import sys",
				Category:   schema.CodeLine,
			},
		},
		Success: true,
	}
}

func TestWriteResultTables(t *testing.T) {
	st := schema.DefaultSettings()
	result := schema.AnalysisResult{
		Repos:   []schema.RepoResult{sampleRepoResult()},
		Success: true,
	}

	var buf bytes.Buffer
	err := NewOutWriter().WriteResult(&buf, &result, &st, 100*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Repository demo (/tmp/demo)")
	assert.Contains(t, output, "Alice")
	assert.Contains(t, output, "alice@example.com")
	assert.Contains(t, output, "66.7")
	assert.Contains(t, output, "33.3")
	assert.Contains(t, output, "src/main.py")
	assert.Contains(t, output, "Showing top 1 files (total lines: 15, total commits: 3)")
	assert.Contains(t, output, "Analyzed 1 repositories in 100ms")
}

func TestWriteResultTablesFailedRepo(t *testing.T) {
	st := schema.DefaultSettings()
	result := schema.AnalysisResult{
		Repos: []schema.RepoResult{
			{
				Name:    "missing",
				Path:    "/tmp/missing",
				Success: false,
				Error:   "invalid repository path: /tmp/missing",
			},
		},
		Success: false,
		Error:   "analysis failed for: /tmp/missing",
	}

	var buf bytes.Buffer
	err := NewOutWriter().WriteResult(&buf, &result, &st, time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "invalid repository path: /tmp/missing")
	assert.NotContains(t, output, "Showing top")
}

func TestWriteResultTablesMultipleRepos(t *testing.T) {
	st := schema.DefaultSettings()
	second := sampleRepoResult()
	second.Name = "other"
	second.Path = "/tmp/other"
	result := schema.AnalysisResult{
		Repos:   []schema.RepoResult{sampleRepoResult(), second},
		Success: true,
	}

	var buf bytes.Buffer
	err := NewOutWriter().WriteResult(&buf, &result, &st, time.Second)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Repository demo")
	assert.Contains(t, output, "Repository other")
	assert.Contains(t, output, "Analyzed 2 repositories")
}

func TestWriteAuthorCSVRows(t *testing.T) {
	repo := sampleRepoResult()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeAuthorCSVRows(w, &repo)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,Alice,alice@example.com,10,66.7,2,10,0,1", lines[0])
	assert.Equal(t, "2,Bob,bob@example.com,5,33.3,1,5,0,1", lines[1])
}

func TestWriteFileCSVRows(t *testing.T) {
	repo := sampleRepoResult()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeFileCSVRows(w, &repo)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "1,src/main.py,15,3,2,100.0", lines[0])
}

func TestWriteBlameCSVRows(t *testing.T) {
	repo := sampleRepoResult()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeBlameCSVRows(w, &repo)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "src/main.py,1,Alice")
	assert.Contains(t, lines[0], "aaaa")
	assert.Contains(t, lines[0], "code,false,import sys")
}

func TestOutputBasename(t *testing.T) {
	tests := []struct {
		name     string
		fix      schema.FixMode
		base     string
		expected string
	}{
		{name: "prefix", fix: schema.PrefixFix, base: "gitattrib", expected: "demo-gitattrib"},
		{name: "postfix", fix: schema.PostfixFix, base: "gitattrib", expected: "gitattrib-demo"},
		{name: "nofix", fix: schema.NoFix, base: "gitattrib", expected: "gitattrib"},
		{name: "empty base falls back to default", fix: schema.PrefixFix, base: "", expected: "demo-gitattrib"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := schema.DefaultSettings()
			st.Fix = tt.fix
			st.OutfileBase = tt.base
			assert.Equal(t, tt.expected, outputBasename(&st, "demo"))
		})
	}
}

func TestGetMaxTablePathWidth(t *testing.T) {
	// Wide terminals are clamped to the maximum path width.
	assert.Equal(t, 70, GetMaxTablePathWidth(200))
	// Narrow terminals hit the minimum.
	assert.Equal(t, 15, GetMaxTablePathWidth(50))
	// In-between widths leave the remainder for the path.
	assert.Equal(t, 55, GetMaxTablePathWidth(100))
}
