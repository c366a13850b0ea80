package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// RepoRoot implements the GitClient interface.
func (m *MockGitClient) RepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// HeadHash implements the GitClient interface.
func (m *MockGitClient) HeadHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	hash, _ := ret.Get(0).(string)
	return hash, ret.Error(1)
}

// ActivityLog implements the GitClient interface.
func (m *MockGitClient) ActivityLog(ctx context.Context, repoPath string, since, until time.Time) ([]byte, error) {
	ret := m.Called(ctx, repoPath, since, until)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// ListFiles implements the GitClient interface.
func (m *MockGitClient) ListFiles(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// BlameFile implements the GitClient interface.
func (m *MockGitClient) BlameFile(ctx context.Context, repoPath, path string, copyMove int, ignoreWhitespace bool) ([]byte, error) {
	ret := m.Called(ctx, repoPath, path, copyMove, ignoreWhitespace)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}
