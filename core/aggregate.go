package core

import (
	"math"
	"sort"

	"github.com/gitattrib/gitattrib/schema"
)

// negligibleShare is the percentage below which an author is dropped when
// scaled percentages are enabled.
const negligibleShare = 0.5

// authorKey identifies one author for aggregation. Name and email together,
// so two people sharing a display name stay distinct.
type authorKey struct {
	name  string
	email string
}

// aggregate folds commit records and classified blame entries into per-author
// and per-file statistics. Insertions and deletions come from diff
// accounting, never from blame; surviving line counts come from blame.
// Author file counts only cover the selected files.
func aggregate(records []commitRecord, entries []schema.BlameEntry, selected []string, st *schema.Settings) ([]schema.AuthorStat, []schema.FileStat) {
	authors := aggregateAuthors(records, entries, selected, st)
	files := aggregateFiles(records, entries, st)
	return authors, files
}

func aggregateAuthors(records []commitRecord, entries []schema.BlameEntry, selected []string, st *schema.Settings) []schema.AuthorStat {
	stats := make(map[authorKey]*schema.AuthorStat)
	touched := make(map[authorKey]map[string]bool)

	lookup := func(name, email string) *schema.AuthorStat {
		key := authorKey{name, email}
		s, ok := stats[key]
		if !ok {
			s = &schema.AuthorStat{Author: name, Email: email}
			stats[key] = s
			touched[key] = make(map[string]bool)
		}
		return s
	}

	// Historical deltas count toward an author's file total only when they
	// land on a selected file, after folding pre-rename paths forward.
	selectedSet := make(map[string]bool, len(selected))
	for _, p := range selected {
		selectedSet[p] = true
	}
	aliases := renameAliases(records, st)

	for i := range records {
		rec := &records[i]
		s := lookup(rec.Commit.Author, rec.Commit.Email)
		s.Commits++
		key := authorKey{rec.Commit.Author, rec.Commit.Email}
		for _, d := range rec.Deltas {
			if d.Binary {
				continue
			}
			s.Insertions += d.Insertions
			if st.Deletions {
				s.Deletions += d.Deletions
			}
			path := d.Path
			if current, ok := aliases[path]; ok {
				path = current
			}
			if selectedSet[path] {
				touched[key][path] = true
			}
		}
	}

	for i := range entries {
		e := &entries[i]
		if e.Excluded {
			continue
		}
		s := lookup(e.Author, e.Email)
		s.Lines++
		touched[authorKey{e.Author, e.Email}][e.Path] = true
	}

	result := make([]schema.AuthorStat, 0, len(stats))
	for key, s := range stats {
		s.Files = len(touched[key])
		result = append(result, *s)
	}
	computePercentages(result, st)

	sort.Slice(result, func(i, j int) bool {
		if result[i].Percentage != result[j].Percentage {
			return result[i].Percentage > result[j].Percentage
		}
		return result[i].Author < result[j].Author
	})
	return result
}

// computePercentages assigns each author's share of the configured base
// metric. With scaled percentages, negligible contributors are dropped and
// the remainder rescaled so the visible set still sums to 100.
func computePercentages(authors []schema.AuthorStat, st *schema.Settings) {
	base := func(a *schema.AuthorStat) float64 {
		if st.PercentBase == schema.CommitsBase {
			return float64(a.Commits)
		}
		return float64(a.Lines)
	}

	var total float64
	for i := range authors {
		total += base(&authors[i])
	}
	if total == 0 {
		// Fall back to insertions so empty-blame runs (blame_skip, dry runs)
		// still produce meaningful shares.
		base = func(a *schema.AuthorStat) float64 { return float64(a.Insertions) }
		for i := range authors {
			total += base(&authors[i])
		}
	}
	if total == 0 {
		return
	}

	for i := range authors {
		authors[i].Percentage = 100 * base(&authors[i]) / total
	}

	if !st.ScaledPercentages {
		return
	}
	var keptTotal float64
	for i := range authors {
		if authors[i].Percentage >= negligibleShare {
			keptTotal += base(&authors[i])
		}
	}
	if keptTotal == 0 {
		return
	}
	for i := range authors {
		if authors[i].Percentage < negligibleShare {
			authors[i].Percentage = 0
			continue
		}
		authors[i].Percentage = 100 * base(&authors[i]) / keptTotal
	}
}

func aggregateFiles(records []commitRecord, entries []schema.BlameEntry, st *schema.Settings) []schema.FileStat {
	// Surviving lines per file. With blame_exclusions=remove, flagged lines
	// leave the counts entirely; hide and show keep them in denominators.
	lines := make(map[string]int)
	fileAuthors := make(map[string]map[authorKey]bool)
	for i := range entries {
		e := &entries[i]
		if st.BlameExclusions == schema.RemoveExclusions && e.Excluded {
			continue
		}
		lines[e.Path]++
		if fileAuthors[e.Path] == nil {
			fileAuthors[e.Path] = make(map[authorKey]bool)
		}
		fileAuthors[e.Path][authorKey{e.Author, e.Email}] = true
	}
	if len(lines) == 0 {
		return []schema.FileStat{}
	}

	aliases := renameAliases(records, st)
	commitCounts := make(map[string]int)
	for i := range records {
		seen := make(map[string]bool)
		for _, d := range records[i].Deltas {
			path := d.Path
			if current, ok := aliases[path]; ok {
				path = current
			}
			if _, tracked := lines[path]; tracked && !seen[path] {
				commitCounts[path]++
				seen[path] = true
			}
		}
	}

	var totalLines int
	for _, n := range lines {
		totalLines += n
	}

	result := make([]schema.FileStat, 0, len(lines))
	for path, n := range lines {
		fs := schema.FileStat{
			Path:    path,
			Lines:   n,
			Commits: commitCounts[path],
			Authors: len(fileAuthors[path]),
		}
		if totalLines > 0 {
			fs.Percentage = 100 * float64(n) / float64(totalLines)
		}
		result = append(result, fs)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Lines != result[j].Lines {
			return result[i].Lines > result[j].Lines
		}
		return result[i].Path < result[j].Path
	})
	return result
}

// renameAliases maps historical paths to their current path so pre-rename
// activity folds into the surviving file's stats when show_renames is set.
// Records must be in reverse-chronological order: newest rename wins.
func renameAliases(records []commitRecord, st *schema.Settings) map[string]string {
	if !st.ShowRenames {
		return nil
	}
	aliases := make(map[string]string)
	for i := range records {
		for _, d := range records[i].Deltas {
			if d.OldPath == "" {
				continue
			}
			current := d.Path
			if c, ok := aliases[current]; ok {
				current = c
			}
			aliases[d.OldPath] = current
		}
	}
	return aliases
}

// percentageSum is a test hook verifying the percentage invariant.
func percentageSum(authors []schema.AuthorStat) float64 {
	var sum float64
	for i := range authors {
		sum += authors[i].Percentage
	}
	return math.Round(sum*1000) / 1000
}
