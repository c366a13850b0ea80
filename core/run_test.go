package core

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/iocache"
	"github.com/gitattrib/gitattrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	aliceSha = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bobSha   = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// blameGroup describes one contiguous porcelain blame group for test input.
type blameGroup struct {
	sha    string
	author string
	unix   int64
	start  int
	lines  []string
}

// buildPorcelain renders blame groups as git blame porcelain output. Commit
// headers are emitted on a commit's first group only, as git does.
func buildPorcelain(groups []blameGroup) []byte {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, g := range groups {
		for i, content := range g.lines {
			lineNo := g.start + i
			fmt.Fprintf(&b, "%s %d %d\n", g.sha, lineNo, lineNo)
			if !seen[g.sha] {
				seen[g.sha] = true
				fmt.Fprintf(&b, "author %s\n", g.author)
				fmt.Fprintf(&b, "author-mail <%s@example.com>\n", g.author)
				fmt.Fprintf(&b, "author-time %d\n", g.unix)
				fmt.Fprintf(&b, "author-tz +0000\n")
				fmt.Fprintf(&b, "filename f.py\n")
			}
			fmt.Fprintf(&b, "\t%s\n", content)
		}
	}
	return []byte(b.String())
}

func repeatedLines(prefix string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s_%d = %d", prefix, i, i)
	}
	return lines
}

// sharedHistory is the activity log for a repo where alice added 10 lines to
// f.py and bob later added 5.
func sharedHistory() []byte {
	return []byte(strings.Join([]string{
		"--" + bobSha + "|bob|bob@example.com|2023-02-01T00:00:00+00:00|extend parser",
		"5\t0\tf.py",
		"--" + aliceSha + "|alice|alice@example.com|2023-01-01T00:00:00+00:00|add parser",
		"10\t0\tf.py",
	}, "\n"))
}

func sharedBlame() []byte {
	return buildPorcelain([]blameGroup{
		{sha: aliceSha, author: "alice", unix: 1672531200, start: 1, lines: repeatedLines("a", 10)},
		{sha: bobSha, author: "bob", unix: 1675209600, start: 11, lines: repeatedLines("b", 5)},
	})
}

// newTestRepo creates a fake working tree with a .git marker and one tracked
// file so discovery and line counting behave.
func newTestRepo(t *testing.T) string {
	t.Helper()
	repo := makeRepo(t, t.TempDir(), "sample")
	content := strings.Join(repeatedLines("x", 15), "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(repo, "f.py"), []byte(content), 0o644))
	return repo
}

func TestExecuteAnalysisSingleRepo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Repos, 1)

	rr := result.Repos[0]
	assert.True(t, rr.Success)
	assert.Equal(t, "sample", rr.Name)

	require.Len(t, rr.AuthorStats, 2)
	assert.Equal(t, "alice", rr.AuthorStats[0].Author)
	assert.Equal(t, 10, rr.AuthorStats[0].Lines)
	assert.InDelta(t, 66.667, rr.AuthorStats[0].Percentage, 0.01)
	assert.Equal(t, "bob", rr.AuthorStats[1].Author)
	assert.InDelta(t, 33.333, rr.AuthorStats[1].Percentage, 0.01)
	assert.InDelta(t, 100, percentageSum(rr.AuthorStats), 0.01)

	require.Len(t, rr.FileStats, 1)
	assert.Equal(t, "f.py", rr.FileStats[0].Path)
	assert.Equal(t, 15, rr.FileStats[0].Lines)
	assert.Len(t, rr.BlameEntries, 15)
	client.AssertExpectations(t)
}

func TestExecuteAnalysisIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}

	engine := NewEngine(client, nil)
	first, err := engine.ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	second, err := engine.ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecuteAnalysisFutureSinceYieldsEmptyStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return([]byte{}, nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}
	st.Since = "2999-01-01"

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Repos, 1)
	assert.True(t, result.Repos[0].Success)
	assert.Empty(t, result.Repos[0].AuthorStats)
	assert.Empty(t, result.Repos[0].FileStats)
	assert.Empty(t, result.Repos[0].BlameEntries)
}

func TestExecuteAnalysisBadInputIsPartialFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	missing := filepath.Join(t.TempDir(), "missing")

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{missing, repo}

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "analysis failed for")
	require.Len(t, result.Repos, 2)

	// Input order is preserved: the bad input comes first.
	assert.False(t, result.Repos[0].Success)
	assert.Contains(t, result.Repos[0].Error, "invalid repository path")
	assert.True(t, result.Repos[1].Success)
	assert.Len(t, result.Repos[1].AuthorStats, 2)
}

func TestExecuteAnalysisCacheKeyIsFixedLength(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("HeadHash", ctx, repo).Return(aliceSha, nil)
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	// Keys are digests, so path length never leaks into the key column.
	isDigestKey := func(key string) bool { return len(key) == 64 }
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.MatchedBy(isDigestKey)).Return([]byte(nil), 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.MatchedBy(isDigestKey), mock.Anything, cacheVersion, mock.AnythingOfType("int64")).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(store)
	mgr.On("GetHistoryStore").Return(nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}

	result, err := NewEngine(client, mgr).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.True(t, result.Success)
	store.AssertExpectations(t)
}

func TestCacheKeyDistinguishesComponents(t *testing.T) {
	base := cacheKey("/repo", "head", "settings")
	assert.Len(t, base, 64)
	assert.NotEqual(t, base, cacheKey("/other", "head", "settings"))
	assert.NotEqual(t, base, cacheKey("/repo", "head2", "settings"))
	assert.NotEqual(t, base, cacheKey("/repo", "head", "settings2"))
}

func TestExecuteAnalysisBadInputAfterValidKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	missing := filepath.Join(t.TempDir(), "missing")

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
	client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(sharedBlame(), nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo, missing}

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Repos, 2)

	// Input order is preserved: the valid repo stays first even though the
	// bad input fails during locate, long before any worker runs.
	assert.True(t, result.Repos[0].Success)
	assert.Equal(t, "sample", result.Repos[0].Name)
	assert.False(t, result.Repos[1].Success)
	assert.Contains(t, result.Repos[1].Error, "invalid repository path")
}

func TestExecuteAnalysisRejectsInvalidSettings(t *testing.T) {
	st := schema.DefaultSettings()
	st.CopyMove = 99

	_, err := NewEngine(&contract.MockGitClient{}, nil).ExecuteAnalysis(context.Background(), st)
	require.Error(t, err)
}

func TestExecuteAnalysisRejectsBadFilterPattern(t *testing.T) {
	st := schema.DefaultSettings()
	st.ExMessages = []string{"[oops"}

	_, err := NewEngine(&contract.MockGitClient{}, nil).ExecuteAnalysis(context.Background(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrFilterConfig)
}

func TestExecuteAnalysisDryRunTwoValidatesOnly(t *testing.T) {
	client := &contract.MockGitClient{}

	st := schema.DefaultSettings()
	st.InputFstrs = []string{"/nonexistent"}
	st.DryRun = 2

	result, err := NewEngine(client, nil).ExecuteAnalysis(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Repos)
	client.AssertExpectations(t)
}

func TestExecuteAnalysisDryRunOneSkipsBlame(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}
	st.DryRun = 1

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	require.Len(t, result.Repos, 1)
	rr := result.Repos[0]
	assert.True(t, rr.Success)
	assert.Empty(t, rr.BlameEntries)
	require.Len(t, rr.FileStats, 1)
	assert.Equal(t, "f.py", rr.FileStats[0].Path)
	assert.Zero(t, rr.FileStats[0].Lines)
	client.AssertNotCalled(t, "BlameFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteAnalysisBlameSkipFallsBackToInsertions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	client := &contract.MockGitClient{}
	client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
	client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)

	st := schema.DefaultSettings()
	st.InputFstrs = []string{repo}
	st.BlameSkip = true

	result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
	require.NoError(t, err)
	require.Len(t, result.Repos, 1)
	rr := result.Repos[0]
	require.Len(t, rr.AuthorStats, 2)
	assert.Equal(t, "alice", rr.AuthorStats[0].Author)
	assert.InDelta(t, 66.667, rr.AuthorStats[0].Percentage, 0.01)
	assert.Empty(t, rr.BlameEntries)
}

func TestExecuteAnalysisExclusionReducesOrKeepsCounts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	blameWithComments := buildPorcelain([]blameGroup{
		{sha: aliceSha, author: "alice", unix: 1672531200, start: 1, lines: []string{
			"x = 1",
			"# setup",
			"y = 2",
		}},
	})

	run := func(comments bool) schema.RepoResult {
		client := &contract.MockGitClient{}
		client.On("ActivityLog", ctx, repo, time.Time{}, time.Time{}).Return(sharedHistory(), nil)
		client.On("ListFiles", ctx, repo).Return([]string{"f.py"}, nil)
		client.On("BlameFile", ctx, repo, "f.py", 1, true).Return(blameWithComments, nil)

		st := schema.DefaultSettings()
		st.InputFstrs = []string{repo}
		st.Comments = comments

		result, err := NewEngine(client, nil).ExecuteAnalysis(ctx, st)
		require.NoError(t, err)
		require.Len(t, result.Repos, 1)
		return result.Repos[0]
	}

	withComments := run(true)
	withoutComments := run(false)

	// Turning a content category off never increases any count.
	require.Len(t, withComments.AuthorStats, 2)
	require.Len(t, withoutComments.AuthorStats, 2)
	assert.Equal(t, 3, withComments.AuthorStats[0].Lines)
	assert.Equal(t, 2, withoutComments.AuthorStats[0].Lines)
	assert.GreaterOrEqual(t, len(withComments.BlameEntries), len(withoutComments.BlameEntries))
}
