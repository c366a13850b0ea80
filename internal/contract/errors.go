package contract

import "errors"

// Engine error taxonomy. Per-repository and per-file failures wrap one of
// these sentinels and are recovered locally; only configuration-level errors
// abort a run before repository tasks start.
var (
	// ErrInvalidRepositoryPath marks an input path that does not exist or
	// contains no discoverable repository within the configured depth.
	ErrInvalidRepositoryPath = errors.New("invalid repository path")

	// ErrGitCommandFailure marks a repository whose history cannot be read.
	ErrGitCommandFailure = errors.New("git command failure")

	// ErrBlameParse marks malformed or binary blame output for one file.
	ErrBlameParse = errors.New("blame parse error")

	// ErrFilterConfig marks a malformed exclusion pattern. Fatal: detected
	// before any repository task starts.
	ErrFilterConfig = errors.New("filter configuration error")

	// ErrConcurrencyFailure marks a worker crash recovered for one repository.
	ErrConcurrencyFailure = errors.New("concurrency failure")
)
