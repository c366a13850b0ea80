package core

import (
	"testing"
	"time"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
)

var (
	older = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
)

func blameLine(path string, line int, author, content string, when time.Time) schema.BlameEntry {
	return schema.BlameEntry{
		Path:       path,
		LineNumber: line,
		Author:     author,
		Email:      author + "@example.com",
		CommitHash: author + "-hash",
		CommitTime: when,
		Content:    content,
	}
}

func TestResolveCopyMovesExactMatch(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "return compute(x, y)", older),
		blameLine("b.py", 1, "bob", "return compute(x, y)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 1

	resolveCopyMoves(entries, &st)

	// The newer duplicate folds back onto the older attribution.
	assert.Equal(t, "alice", entries[1].Author)
	assert.Equal(t, "alice-hash", entries[1].CommitHash)
	assert.Equal(t, older, entries[1].CommitTime)
	// The origin itself is untouched.
	assert.Equal(t, "alice", entries[0].Author)
}

func TestResolveCopyMovesDisabledAtLevelZero(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "return compute(x, y)", older),
		blameLine("b.py", 1, "bob", "return compute(x, y)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 0

	resolveCopyMoves(entries, &st)
	assert.Equal(t, "bob", entries[1].Author)
}

func TestResolveCopyMovesIgnoresSameFile(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "return compute(x, y)", older),
		blameLine("a.py", 9, "bob", "return compute(x, y)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 1

	resolveCopyMoves(entries, &st)
	assert.Equal(t, "bob", entries[1].Author)
}

func TestResolveCopyMovesLevelOneRequiresExactContent(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "return compute(x, y)", older),
		blameLine("b.py", 1, "bob", "return compute(x, z)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 1

	resolveCopyMoves(entries, &st)
	assert.Equal(t, "bob", entries[1].Author)
}

func TestResolveCopyMovesSimilarityAtHigherLevels(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "return compute(first, second)", older),
		blameLine("b.py", 1, "bob", "return compute(first, third)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 3

	resolveCopyMoves(entries, &st)
	assert.Equal(t, "alice", entries[1].Author)
}

func TestResolveCopyMovesTieBreak(t *testing.T) {
	middle := older.AddDate(0, 2, 0)
	entries := []schema.BlameEntry{
		blameLine("z.py", 1, "carol", "return compute(x, y)", middle),
		blameLine("a.py", 1, "alice", "return compute(x, y)", older),
		blameLine("b.py", 1, "bob", "return compute(x, y)", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 1

	resolveCopyMoves(entries, &st)

	// Prefer the most recent origin commit among older attributions.
	assert.Equal(t, "carol", entries[2].Author)
}

func TestResolveCopyMovesSkipsBlankLines(t *testing.T) {
	entries := []schema.BlameEntry{
		blameLine("a.py", 1, "alice", "", older),
		blameLine("b.py", 1, "bob", "   ", newer),
	}
	st := schema.DefaultSettings()
	st.CopyMove = 1

	resolveCopyMoves(entries, &st)
	assert.Equal(t, "bob", entries[1].Author)
}

func TestSimilarity(t *testing.T) {
	dmp := diffmatchpatch.New()
	assert.InDelta(t, 1.0, similarity(dmp, "same", "same"), 1e-9)
	assert.InDelta(t, 0.75, similarity(dmp, "abcd", "abcx"), 1e-9)
	assert.Less(t, similarity(dmp, "completely", "different!"), 0.5)
}

func TestLengthsComparable(t *testing.T) {
	assert.True(t, lengthsComparable("abcd", "abcde", 0.75))
	assert.False(t, lengthsComparable("ab", "abcdefgh", 0.75))
}
