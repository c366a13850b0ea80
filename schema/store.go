package schema

import "time"

// CacheStatus summarizes the state of the repository result cache.
type CacheStatus struct {
	Backend    DatabaseBackend `json:"backend"`
	Location   string          `json:"location"`
	EntryCount int             `json:"entry_count"`
	TotalBytes int64           `json:"total_bytes"`
	OldestTime time.Time       `json:"oldest_time"`
	NewestTime time.Time       `json:"newest_time"`
}

// HistoryStatus summarizes the state of the run-history store.
type HistoryStatus struct {
	Backend   DatabaseBackend `json:"backend"`
	Location  string          `json:"location"`
	RunCount  int             `json:"run_count"`
	RepoCount int             `json:"repo_count"`
	LastRun   *time.Time      `json:"last_run,omitempty"`
}

// RunRecord is a row from the attrib_runs history table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRepos    int32
	Success       bool
	SettingsJSON  *string
}

// RepoStatRecord is a row from the attrib_repo_stats history table, holding
// the aggregated per-repository outcome of one run.
type RepoStatRecord struct {
	RunID       int64
	RepoName    string
	RepoPath    string
	AnalyzedAt  time.Time
	AuthorCount int32
	FileCount   int32
	LineCount   int32
	CommitCount int32
	Success     bool
	ErrorText   *string
}
