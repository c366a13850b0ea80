package outwriter

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gitattrib/gitattrib/schema"
)

// Column headers for the three CSV exports.
var (
	authorCSVHeader = []string{"rank", "author", "email", "lines", "percentage", "commits", "insertions", "deletions", "files"}
	fileCSVHeader   = []string{"rank", "path", "lines", "commits", "authors", "percentage"}
	blameCSVHeader  = []string{"path", "line_number", "author", "email", "commit_hash", "commit_time", "category", "excluded", "content"}
)

// writeAuthorCSVRows writes one row per author stat.
func writeAuthorCSVRows(w *csv.Writer, repo *schema.RepoResult) error {
	for i, a := range repo.AuthorStats {
		rec := []string{
			strconv.Itoa(i + 1),
			a.Author,
			a.Email,
			strconv.Itoa(a.Lines),
			fmtPercent(a.Percentage),
			strconv.Itoa(a.Commits),
			strconv.Itoa(a.Insertions),
			strconv.Itoa(a.Deletions),
			strconv.Itoa(a.Files),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeFileCSVRows writes one row per file stat.
func writeFileCSVRows(w *csv.Writer, repo *schema.RepoResult) error {
	for i, f := range repo.FileStats {
		rec := []string{
			strconv.Itoa(i + 1),
			f.Path,
			strconv.Itoa(f.Lines),
			strconv.Itoa(f.Commits),
			strconv.Itoa(f.Authors),
			fmtPercent(f.Percentage),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeBlameCSVRows writes one row per attributed line.
func writeBlameCSVRows(w *csv.Writer, repo *schema.RepoResult) error {
	for _, e := range repo.BlameEntries {
		rec := []string{
			e.Path,
			strconv.Itoa(e.LineNumber),
			e.Author,
			e.Email,
			e.CommitHash,
			e.CommitTime.Format(time.RFC3339),
			string(e.Category),
			strconv.FormatBool(e.Excluded),
			e.Content,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
