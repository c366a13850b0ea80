package core

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// extractBlame attributes every surviving line of one file to its origin
// commit via git blame porcelain output. Rename continuity comes from blame
// itself; chains blame cannot resolve simply start attribution fresh.
func extractBlame(ctx context.Context, client contract.GitClient, repoPath, path string, st *schema.Settings) ([]schema.BlameEntry, error) {
	ignoreWhitespace := !st.Whitespace
	out, err := client.BlameFile(ctx, repoPath, path, st.CopyMove, ignoreWhitespace)
	if err != nil {
		return nil, err
	}
	entries, err := parseBlamePorcelain(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrBlameParse, path, err)
	}
	for i := range entries {
		entries[i].Path = path
	}
	return entries, nil
}

// blameCommitInfo accumulates the per-commit headers of porcelain output,
// which appear only on a commit's first occurrence.
type blameCommitInfo struct {
	author string
	email  string
	when   time.Time
}

// parseBlamePorcelain parses `git blame --porcelain` output into one entry
// per surviving line. Binary content is rejected rather than misattributed.
func parseBlamePorcelain(out []byte) ([]schema.BlameEntry, error) {
	if bytes.IndexByte(out, 0) >= 0 {
		return nil, fmt.Errorf("binary content")
	}

	commits := make(map[string]*blameCommitInfo)
	var entries []schema.BlameEntry
	var currentHash string
	var currentLine int
	pending := false

	for line := range strings.Lines(string(out)) {
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "\t") {
			if !pending {
				return nil, fmt.Errorf("content line without group header")
			}
			info := commits[currentHash]
			if info == nil {
				return nil, fmt.Errorf("content line for unknown commit %s", currentHash)
			}
			entries = append(entries, schema.BlameEntry{
				LineNumber: currentLine,
				Author:     info.author,
				Email:      info.email,
				CommitHash: currentHash,
				CommitTime: info.when,
				Content:    line[1:],
			})
			pending = false
			continue
		}

		if hash, final, ok := parseGroupHeader(line); ok {
			currentHash = hash
			currentLine = final
			pending = true
			if _, seen := commits[hash]; !seen {
				commits[hash] = &blameCommitInfo{}
			}
			continue
		}

		if currentHash == "" {
			return nil, fmt.Errorf("unexpected line before first group header")
		}
		parseCommitHeaderField(commits[currentHash], line)
	}

	if pending {
		return nil, fmt.Errorf("truncated output")
	}
	return entries, nil
}

// parseGroupHeader matches "<40-hex-sha> <orig> <final> [<count>]" lines.
func parseGroupHeader(line string) (hash string, finalLine int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields) > 4 {
		return "", 0, false
	}
	if len(fields[0]) != 40 || !isHex(fields[0]) {
		return "", 0, false
	}
	final, err := strconv.Atoi(fields[2])
	if err != nil || final <= 0 {
		return "", 0, false
	}
	return fields[0], final, true
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// parseCommitHeaderField folds one porcelain header line into the commit info.
func parseCommitHeaderField(info *blameCommitInfo, line string) {
	if info == nil {
		return
	}
	key, value, found := strings.Cut(line, " ")
	if !found {
		return // boundary and similar flag-only headers
	}
	switch key {
	case "author":
		info.author = value
	case "author-mail":
		info.email = strings.Trim(value, "<>")
	case "author-time":
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			info.when = time.Unix(secs, 0).UTC()
		}
	}
}
