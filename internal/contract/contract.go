// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/gitattrib/gitattrib/schema"
)

// GitClient defines the necessary operations for repository analysis.
// This allows the core pipeline to be tested without a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository Resolution ---

	// RepoRoot returns the absolute path to the root of the working tree
	// containing the given context path.
	RepoRoot(ctx context.Context, contextPath string) (string, error)

	// HeadHash returns the current HEAD commit hash of the repository.
	HeadHash(ctx context.Context, repoPath string) (string, error)

	// --- History / Diff Accounting ---

	// ActivityLog returns the raw commit log with per-file numstat records,
	// reverse-chronological from HEAD, bounded by the optional time window.
	ActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error)

	// --- File State / Blame ---

	// ListFiles returns all tracked files at HEAD.
	ListFiles(ctx context.Context, repoPath string) ([]string, error)

	// BlameFile returns raw porcelain blame output for one tracked file at
	// HEAD. copyMove escalates git's own move/copy detection flags;
	// ignoreWhitespace adds -w so whitespace-only edits keep the prior
	// attribution.
	BlameFile(ctx context.Context, repoPath, path string, copyMove int, ignoreWhitespace bool) ([]byte, error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cached per-repository results.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// HistoryStore defines the interface for recording analysis runs.
type HistoryStore interface {
	// BeginRun creates a new run row and returns its unique ID.
	BeginRun(startTime time.Time, settings *schema.Settings) (int64, error)

	// EndRun finalizes the run row with completion data.
	EndRun(runID int64, endTime time.Time, totalRepos int, success bool) error

	// RecordRepoStats stores the aggregated outcome for one repository.
	RecordRepoStats(runID int64, result *schema.RepoResult) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}
