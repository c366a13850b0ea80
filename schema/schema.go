// Package schema has settings, models and constants for all parts of gitattrib.
package schema

import "time"

// Commit is one commit as read from repository history. Immutable once parsed.
type Commit struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
}

// BlameEntry attributes one surviving line of a file to its origin commit.
type BlameEntry struct {
	Path       string       `json:"path"`
	LineNumber int          `json:"line_number"`
	Author     string       `json:"author"`
	Email      string       `json:"email"`
	CommitHash string       `json:"commit_hash"`
	CommitTime time.Time    `json:"commit_time"`
	Content    string       `json:"content"`
	Category   LineCategory `json:"category"`
	Excluded   bool         `json:"excluded"`
}

// AuthorStat aggregates one author's contribution to a repository.
type AuthorStat struct {
	Author     string  `json:"author"`
	Email      string  `json:"email"`
	Commits    int     `json:"commits"`
	Insertions int     `json:"insertions"`
	Deletions  int     `json:"deletions"`
	Files      int     `json:"files"`
	Lines      int     `json:"lines"`
	Percentage float64 `json:"percentage"`
}

// FileStat aggregates activity on one file across the analyzed range.
type FileStat struct {
	Path       string  `json:"path"`
	Lines      int     `json:"lines"`
	Commits    int     `json:"commits"`
	Authors    int     `json:"authors"`
	Percentage float64 `json:"percentage"`
}

// RepoResult is the analysis outcome for a single repository.
type RepoResult struct {
	Name         string       `json:"name"`
	Path         string       `json:"path"`
	AuthorStats  []AuthorStat `json:"author_stats"`
	FileStats    []FileStat   `json:"file_stats"`
	BlameEntries []BlameEntry `json:"blame_entries"`
	Success      bool         `json:"success"`
	Error        string       `json:"error,omitempty"`
}

// AnalysisResult is the final output of one analysis run. Repos appears in
// the configured input order regardless of worker completion order.
type AnalysisResult struct {
	Repos   []RepoResult `json:"repos"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
}

// SaveResult reports the outcome of a save_settings operation.
type SaveResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Warning records a non-fatal per-file problem observed during analysis.
type Warning struct {
	Repo    string `json:"repo"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}
