package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// ActivityLogFormat is the commit header format used by ActivityLog output.
// Header lines start with "--" to keep them distinguishable from numstat rows.
const ActivityLogFormat = "--%H|%an|%ae|%ad|%s"

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%w in %q: %s", ErrGitCommandFailure, repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v. Ensure Git is installed and available on your PATH", ErrGitCommandFailure, err)
	}
	return out, nil
}

// RepoRoot implements the GitClient interface.
func (c *LocalGitClient) RepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// HeadHash implements the GitClient interface.
func (c *LocalGitClient) HeadHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ActivityLog implements the GitClient interface.
func (c *LocalGitClient) ActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error) {
	args := activityLogArgs(since, until)
	return c.Run(ctx, repoPath, args...)
}

// activityLogArgs builds the git log invocation for ActivityLog.
func activityLogArgs(since, until time.Time) []string {
	args := []string{
		"log",
		"--numstat",
		"--no-merges",
		"--pretty=format:" + ActivityLogFormat,
		"--date=iso-strict",
	}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}
	if !until.IsZero() {
		args = append(args, "--until="+until.Format(time.RFC3339))
	}
	return args
}

// ListFiles implements the GitClient interface.
func (c *LocalGitClient) ListFiles(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "ls-tree", "-r", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	files := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(files) == 1 && files[0] == "" {
		return []string{}, nil
	}
	return files, nil
}

// BlameFile implements the GitClient interface.
func (c *LocalGitClient) BlameFile(ctx context.Context, repoPath, path string, copyMove int, ignoreWhitespace bool) ([]byte, error) {
	args := blameArgs(path, copyMove, ignoreWhitespace)
	return c.Run(ctx, repoPath, args...)
}

// blameArgs builds the git blame invocation for one file. Higher copy/move
// levels escalate from rename detection (-M) to cross-file copy detection
// (repeated -C), mirroring git's own escalation semantics.
func blameArgs(path string, copyMove int, ignoreWhitespace bool) []string {
	args := []string{"blame", "--porcelain"}
	if ignoreWhitespace {
		args = append(args, "-w")
	}
	switch {
	case copyMove >= 4:
		args = append(args, "-M", "-C", "-C", "-C")
	case copyMove == 3:
		args = append(args, "-M", "-C", "-C")
	case copyMove == 2:
		args = append(args, "-M", "-C")
	case copyMove == 1:
		args = append(args, "-M")
	}
	args = append(args, "HEAD", "--", path)
	return args
}
