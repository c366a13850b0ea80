package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// fileDelta is the numstat record for one file within one commit.
type fileDelta struct {
	Path       string // path after the commit
	OldPath    string // pre-rename path, empty unless the commit renamed the file
	Insertions int
	Deletions  int
	Binary     bool
}

// commitRecord pairs a parsed commit with its per-file diff accounting.
type commitRecord struct {
	Commit schema.Commit
	Deltas []fileDelta
}

// commitFilter holds the compiled exclusion patterns for one run.
type commitFilter struct {
	authors   []*regexp.Regexp
	emails    []*regexp.Regexp
	revisions []*regexp.Regexp
	messages  []*regexp.Regexp
	since     time.Time
	until     time.Time
}

// compileFilters compiles the exclusion patterns from settings. A malformed
// pattern is a configuration-level failure detected before any repository
// task starts.
func compileFilters(st *schema.Settings) (*commitFilter, error) {
	f := &commitFilter{}
	var err error
	if f.authors, err = compilePatterns(st.ExAuthors); err != nil {
		return nil, fmt.Errorf("%w: ex_authors: %v", contract.ErrFilterConfig, err)
	}
	if f.emails, err = compilePatterns(st.ExEmails); err != nil {
		return nil, fmt.Errorf("%w: ex_emails: %v", contract.ErrFilterConfig, err)
	}
	if f.revisions, err = compilePatterns(st.ExRevisions); err != nil {
		return nil, fmt.Errorf("%w: ex_revisions: %v", contract.ErrFilterConfig, err)
	}
	if f.messages, err = compilePatterns(st.ExMessages); err != nil {
		return nil, fmt.Errorf("%w: ex_messages: %v", contract.ErrFilterConfig, err)
	}
	if f.since, f.until, err = st.DateBounds(); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrFilterConfig, err)
	}
	return f, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %v", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// excludes reports whether the commit matches any exclusion rule.
func (f *commitFilter) excludes(c *schema.Commit) bool {
	if matchesAny(f.authors, c.Author) ||
		matchesAny(f.emails, c.Email) ||
		matchesAny(f.revisions, c.Hash) ||
		matchesAny(f.messages, c.Subject) {
		return true
	}
	if !f.since.IsZero() && c.Timestamp.Before(f.since) {
		return true
	}
	if !f.until.IsZero() && c.Timestamp.After(f.until) {
		return true
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, value string) bool {
	for _, re := range patterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// walkHistory reads the repository's commit history reachable from HEAD in
// reverse-chronological order, with exclusion filters applied before any
// blame work happens.
func walkHistory(ctx context.Context, client contract.GitClient, repoPath string, filter *commitFilter) ([]commitRecord, error) {
	out, err := client.ActivityLog(ctx, repoPath, filter.since, filter.until)
	if err != nil {
		return nil, err
	}
	records := parseActivityLog(out)

	kept := make([]commitRecord, 0, len(records))
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if filter.excludes(&records[i].Commit) {
			continue
		}
		kept = append(kept, records[i])
	}
	return kept, nil
}

// parseActivityLog parses the combined pretty/numstat log output produced by
// GitClient.ActivityLog. Header lines start with "--"; the following numstat
// rows belong to that commit until the next header.
func parseActivityLog(out []byte) []commitRecord {
	var records []commitRecord
	var current *commitRecord

	for line := range strings.Lines(string(out)) {
		line = strings.Trim(line, " \t\r\n")
		if strings.HasPrefix(line, "--") {
			commit, ok := parseCommitHeader(line)
			if !ok {
				continue
			}
			records = append(records, commitRecord{Commit: commit})
			current = &records[len(records)-1]
			continue
		}
		if line == "" || current == nil {
			continue
		}
		if delta, ok := parseNumstatLine(line); ok {
			current.Deltas = append(current.Deltas, delta)
		}
	}
	return records
}

// parseCommitHeader extracts a commit from a "--hash|author|email|date|subject" line.
func parseCommitHeader(line string) (schema.Commit, bool) {
	parts := strings.SplitN(line[2:], "|", 5)
	if len(parts) != 5 {
		return schema.Commit{}, false
	}
	ts, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return schema.Commit{}, false
	}
	return schema.Commit{
		Hash:      parts[0],
		Author:    parts[1],
		Email:     parts[2],
		Timestamp: ts,
		Subject:   parts[4],
	}, true
}

// parseNumstatLine parses one "insertions\tdeletions\tpath" record. Binary
// files report "-" counts; renames encode the old and new path in the path
// column.
func parseNumstatLine(line string) (fileDelta, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return fileDelta{}, false
	}
	delta := fileDelta{}
	if parts[0] == "-" || parts[1] == "-" {
		delta.Binary = true
	} else {
		delta.Insertions = parseCount(parts[0])
		delta.Deletions = parseCount(parts[1])
	}

	path := parts[2]
	if strings.Contains(path, " => ") {
		oldPath, newPath := parseRenamePath(path)
		if newPath == "" {
			return fileDelta{}, false
		}
		delta.Path = newPath
		delta.OldPath = oldPath
	} else {
		delta.Path = path
	}
	return delta, true
}

func parseCount(s string) int {
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename record, handling
// both the plain "old => new" and the braced "prefix{old => new}suffix" forms.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	oldPath := strings.ReplaceAll(prefix+renameParts[0]+suffix, "//", "/")
	newPath := strings.ReplaceAll(prefix+renameParts[1]+suffix, "//", "/")
	return oldPath, newPath
}
