package core

import (
	"sort"
	"strings"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// resolveCopyMoves reattributes lines that appear to have been relocated
// rather than newly authored. A line attributed to commit C in file F is
// folded back onto an older attribution when another analyzed file holds the
// same (level 1) or sufficiently similar (levels 2-4) content attributed to
// an earlier commit. Disabled at level 0.
func resolveCopyMoves(entries []schema.BlameEntry, st *schema.Settings) {
	if st.CopyMove <= 0 {
		return
	}
	threshold := st.SimilarityThreshold()

	// Deterministic processing order regardless of extraction order.
	order := make([]int, len(entries))
	for i := range entries {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ea, eb := &entries[order[a]], &entries[order[b]]
		if ea.Path != eb.Path {
			return ea.Path < eb.Path
		}
		return ea.LineNumber < eb.LineNumber
	})

	index := buildContentIndex(entries)
	dmp := diffmatchpatch.New()

	for _, i := range order {
		e := &entries[i]
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}

		origin := findExactOrigin(entries, index[content], e)
		if origin < 0 && threshold < 1 {
			origin = findSimilarOrigin(entries, e, content, threshold, dmp)
		}
		if origin >= 0 {
			o := &entries[origin]
			e.Author = o.Author
			e.Email = o.Email
			e.CommitHash = o.CommitHash
			e.CommitTime = o.CommitTime
		}
	}
}

// buildContentIndex maps trimmed line content to the entries carrying it.
func buildContentIndex(entries []schema.BlameEntry) map[string][]int {
	index := make(map[string][]int, len(entries))
	for i := range entries {
		content := strings.TrimSpace(entries[i].Content)
		if content == "" {
			continue
		}
		index[content] = append(index[content], i)
	}
	return index
}

// findExactOrigin picks the best older attribution among entries with
// identical content. Ties prefer the most recent origin commit, then the
// lexically smallest source path.
func findExactOrigin(entries []schema.BlameEntry, candidates []int, e *schema.BlameEntry) int {
	best := -1
	for _, c := range candidates {
		o := &entries[c]
		if o.Path == e.Path || !o.CommitTime.Before(e.CommitTime) {
			continue
		}
		if best < 0 || betterOrigin(o, &entries[best]) {
			best = c
		}
	}
	return best
}

// findSimilarOrigin scans older attributions in other files for content whose
// similarity clears the configured threshold.
func findSimilarOrigin(entries []schema.BlameEntry, e *schema.BlameEntry, content string, threshold float64, dmp *diffmatchpatch.DiffMatchPatch) int {
	best := -1
	for i := range entries {
		o := &entries[i]
		if o.Path == e.Path || !o.CommitTime.Before(e.CommitTime) {
			continue
		}
		other := strings.TrimSpace(o.Content)
		if other == "" || !lengthsComparable(content, other, threshold) {
			continue
		}
		if similarity(dmp, content, other) < threshold {
			continue
		}
		if best < 0 || betterOrigin(o, &entries[best]) {
			best = i
		}
	}
	return best
}

// betterOrigin implements the candidate tie-break: most recent origin commit
// first, then lexically smallest source path.
func betterOrigin(a, b *schema.BlameEntry) bool {
	if !a.CommitTime.Equal(b.CommitTime) {
		return a.CommitTime.After(b.CommitTime)
	}
	return a.Path < b.Path
}

// lengthsComparable prunes similarity candidates whose length ratio already
// rules out clearing the threshold.
func lengthsComparable(a, b string, threshold float64) bool {
	la, lb := len(a), len(b)
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return float64(shorter) >= threshold*float64(longer)
}

// similarity is 1 minus the normalized Levenshtein distance of the two lines.
func similarity(dmp *diffmatchpatch.DiffMatchPatch, a, b string) float64 {
	if a == b {
		return 1
	}
	longer := max(len(a), len(b))
	if longer == 0 {
		return 1
	}
	diffs := dmp.DiffMain(a, b, false)
	dist := dmp.DiffLevenshtein(diffs)
	return 1 - float64(dist)/float64(longer)
}
