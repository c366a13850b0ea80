package core

import (
	"testing"
	"time"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAt(hash, author string, when time.Time, deltas ...fileDelta) commitRecord {
	return commitRecord{
		Commit: schema.Commit{
			Hash:      hash,
			Author:    author,
			Email:     author + "@example.com",
			Timestamp: when,
			Subject:   "change",
		},
		Deltas: deltas,
	}
}

func sampleRecords() []commitRecord {
	return []commitRecord{
		commitAt("bbbb", "bob", newer, fileDelta{Path: "f.py", Insertions: 5}),
		commitAt("aaaa", "alice", older, fileDelta{Path: "f.py", Insertions: 10}),
	}
}

// sampleEntries mirrors a file where alice authored 10 surviving lines and
// bob authored 5.
func sampleEntries() []schema.BlameEntry {
	entries := make([]schema.BlameEntry, 0, 15)
	for i := 1; i <= 10; i++ {
		entries = append(entries, blameLine("f.py", i, "alice", "alice line", older))
	}
	for i := 11; i <= 15; i++ {
		entries = append(entries, blameLine("f.py", i, "bob", "bob line", newer))
	}
	return entries
}

func TestAggregateAuthorsShares(t *testing.T) {
	st := schema.DefaultSettings()
	authors, files := aggregate(sampleRecords(), sampleEntries(), []string{"f.py"}, &st)

	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Author)
	assert.Equal(t, 10, authors[0].Lines)
	assert.Equal(t, 1, authors[0].Commits)
	assert.Equal(t, 10, authors[0].Insertions)
	assert.InDelta(t, 66.667, authors[0].Percentage, 0.01)

	assert.Equal(t, "bob", authors[1].Author)
	assert.Equal(t, 5, authors[1].Lines)
	assert.InDelta(t, 33.333, authors[1].Percentage, 0.01)

	assert.InDelta(t, 100, percentageSum(authors), 0.01)

	require.Len(t, files, 1)
	assert.Equal(t, "f.py", files[0].Path)
	assert.Equal(t, 15, files[0].Lines)
	assert.Equal(t, 2, files[0].Commits)
	assert.Equal(t, 2, files[0].Authors)
	assert.InDelta(t, 100, files[0].Percentage, 0.01)
}

func TestAggregateIsIdempotent(t *testing.T) {
	st := schema.DefaultSettings()
	first, _ := aggregate(sampleRecords(), sampleEntries(), []string{"f.py"}, &st)
	second, _ := aggregate(sampleRecords(), sampleEntries(), []string{"f.py"}, &st)
	assert.Equal(t, first, second)
}

func TestAggregateCommitsBase(t *testing.T) {
	st := schema.DefaultSettings()
	st.PercentBase = schema.CommitsBase

	records := append(sampleRecords(),
		commitAt("cccc", "bob", newer, fileDelta{Path: "f.py", Insertions: 1}),
		commitAt("dddd", "bob", newer, fileDelta{Path: "f.py", Insertions: 1}),
	)
	authors, _ := aggregate(records, sampleEntries(), []string{"f.py"}, &st)

	require.Len(t, authors, 2)
	assert.Equal(t, "bob", authors[0].Author)
	assert.InDelta(t, 75, authors[0].Percentage, 0.01)
	assert.InDelta(t, 25, authors[1].Percentage, 0.01)
}

func TestAggregateDeletionsToggle(t *testing.T) {
	records := []commitRecord{
		commitAt("aaaa", "alice", older, fileDelta{Path: "f.py", Insertions: 3, Deletions: 7}),
	}

	st := schema.DefaultSettings()
	authors, _ := aggregate(records, nil, []string{"f.py"}, &st)
	require.Len(t, authors, 1)
	assert.Zero(t, authors[0].Deletions)

	st.Deletions = true
	authors, _ = aggregate(records, nil, []string{"f.py"}, &st)
	assert.Equal(t, 7, authors[0].Deletions)
}

func TestAggregateExcludedLinesSkipAuthorCounts(t *testing.T) {
	entries := sampleEntries()
	// Flag all of bob's lines as excluded content.
	for i := 10; i < 15; i++ {
		entries[i].Excluded = true
	}

	st := schema.DefaultSettings()
	authors, _ := aggregate(sampleRecords(), entries, []string{"f.py"}, &st)

	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Author)
	assert.Equal(t, 10, authors[0].Lines)
	assert.InDelta(t, 100, authors[0].Percentage, 0.01)
	assert.Equal(t, "bob", authors[1].Author)
	assert.Zero(t, authors[1].Lines)
	assert.InDelta(t, 100, percentageSum(authors), 0.01)
}

func TestAggregateFilesRemovePolicyDropsExcluded(t *testing.T) {
	entries := sampleEntries()
	for i := 10; i < 15; i++ {
		entries[i].Excluded = true
	}

	st := schema.DefaultSettings()
	st.BlameExclusions = schema.HideExclusions
	_, files := aggregate(sampleRecords(), entries, []string{"f.py"}, &st)
	require.Len(t, files, 1)
	assert.Equal(t, 15, files[0].Lines)

	st.BlameExclusions = schema.RemoveExclusions
	_, files = aggregate(sampleRecords(), entries, []string{"f.py"}, &st)
	require.Len(t, files, 1)
	assert.Equal(t, 10, files[0].Lines)
}

func TestAggregateScaledPercentages(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, blameLine("f.py", 16, "drive-by", "tiny", older))
	for i := 0; i < 990; i++ {
		entries = append(entries, blameLine("g.py", i+1, "alice", "bulk", older))
	}

	st := schema.DefaultSettings()
	st.ScaledPercentages = true
	authors, _ := aggregate(nil, entries, []string{"f.py", "g.py"}, &st)

	var driveBy *schema.AuthorStat
	for i := range authors {
		if authors[i].Author == "drive-by" {
			driveBy = &authors[i]
		}
	}
	require.NotNil(t, driveBy)
	assert.Zero(t, driveBy.Percentage)
	assert.InDelta(t, 100, percentageSum(authors), 0.01)
}

func TestAggregateBinaryDeltasIgnored(t *testing.T) {
	records := []commitRecord{
		commitAt("aaaa", "alice", older,
			fileDelta{Path: "f.py", Insertions: 3},
			fileDelta{Path: "logo.png", Binary: true},
		),
	}

	st := schema.DefaultSettings()
	authors, _ := aggregate(records, nil, []string{"f.py"}, &st)
	require.Len(t, authors, 1)
	assert.Equal(t, 3, authors[0].Insertions)
	assert.Equal(t, 1, authors[0].Files)
}

func TestAggregateAuthorFilesCountSelectedOnly(t *testing.T) {
	records := []commitRecord{
		commitAt("aaaa", "alice", older,
			fileDelta{Path: "f.py", Insertions: 10},
			fileDelta{Path: "notes.txt", Insertions: 4},
		),
	}

	st := schema.DefaultSettings()
	authors, _ := aggregate(records, nil, []string{"f.py"}, &st)
	require.Len(t, authors, 1)

	// notes.txt was never selected, so it must not inflate the file count.
	// Insertions still cover the whole commit.
	assert.Equal(t, 1, authors[0].Files)
	assert.Equal(t, 14, authors[0].Insertions)
}

func TestAggregateAuthorFilesFollowRenames(t *testing.T) {
	records := []commitRecord{
		commitAt("cccc", "bob", newer, fileDelta{Path: "new.py", OldPath: "old.py", Insertions: 1}),
		commitAt("aaaa", "alice", older, fileDelta{Path: "old.py", Insertions: 10}),
	}

	st := schema.DefaultSettings()
	authors, _ := aggregate(records, nil, []string{"new.py"}, &st)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Author)
	assert.Zero(t, authors[0].Files)

	st.ShowRenames = true
	authors, _ = aggregate(records, nil, []string{"new.py"}, &st)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Author)
	assert.Equal(t, 1, authors[0].Files)
}

func TestAggregateInsertionsFallbackWithoutBlame(t *testing.T) {
	st := schema.DefaultSettings()
	st.BlameSkip = true

	authors, _ := aggregate(sampleRecords(), nil, []string{"f.py"}, &st)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Author)
	assert.InDelta(t, 66.667, authors[0].Percentage, 0.01)
	assert.InDelta(t, 100, percentageSum(authors), 0.01)
}

func TestRenameAliasesFoldHistory(t *testing.T) {
	records := []commitRecord{
		commitAt("cccc", "bob", newer, fileDelta{Path: "new.py", OldPath: "old.py", Insertions: 1}),
		commitAt("aaaa", "alice", older, fileDelta{Path: "old.py", Insertions: 10}),
	}
	entries := []schema.BlameEntry{
		blameLine("new.py", 1, "alice", "surviving", older),
	}

	st := schema.DefaultSettings()
	_, files := aggregate(records, entries, []string{"new.py"}, &st)
	require.Len(t, files, 1)
	assert.Equal(t, 1, files[0].Commits)

	st.ShowRenames = true
	_, files = aggregate(records, entries, []string{"new.py"}, &st)
	require.Len(t, files, 1)
	assert.Equal(t, 2, files[0].Commits)
}
