package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

// writeResultTables renders the full analysis result as human-readable tables,
// one author table and one file table per repository.
func writeResultTables(w io.Writer, result *schema.AnalysisResult, st *schema.Settings, duration time.Duration) error {
	for i := range result.Repos {
		repo := &result.Repos[i]
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeRepoHeader(w, repo); err != nil {
			return err
		}
		if !repo.Success {
			continue
		}
		if err := writeAuthorTable(w, repo); err != nil {
			return err
		}
		if err := writeFileTable(w, repo, st); err != nil {
			return err
		}
	}

	workers := 1
	if st.Multithread {
		workers = schema.DefaultWorkers
	}
	_, err := fmt.Fprintf(w, "\nAnalyzed %d repositories in %v with %d workers\n", len(result.Repos), duration, workers)
	return err
}

// writeRepoHeader prints the repository banner with its colored status label.
func writeRepoHeader(w io.Writer, repo *schema.RepoResult) error {
	if _, err := fmt.Fprintf(w, "Repository %s (%s) [%s]\n", repo.Name, repo.Path, contract.GetColorStatusLabel(repo.Success)); err != nil {
		return err
	}
	if repo.Error != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", repo.Error); err != nil {
			return err
		}
	}
	return nil
}

// writeAuthorTable generates and writes the per-author table.
func writeAuthorTable(w io.Writer, repo *schema.RepoResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Author", "Email", "Lines", "%", "Commits", "Insertions", "Deletions", "Files"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, a := range repo.AuthorStats {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			a.Author,
			a.Email,
			strconv.Itoa(a.Lines),
			fmtPercent(a.Percentage),
			strconv.Itoa(a.Commits),
			strconv.Itoa(a.Insertions),
			strconv.Itoa(a.Deletions),
			strconv.Itoa(a.Files),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeFileTable generates and writes the per-file table.
func writeFileTable(w io.Writer, repo *schema.RepoResult, st *schema.Settings) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Lines", "Commits", "Authors", "%"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxPathWidth := GetMaxTablePathWidth(0)
	var data [][]string
	for i, f := range repo.FileStats {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, maxPathWidth),
			strconv.Itoa(f.Lines),
			strconv.Itoa(f.Commits),
			strconv.Itoa(f.Authors),
			fmtPercent(f.Percentage),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	totalLines := 0
	totalCommits := 0
	for _, f := range repo.FileStats {
		totalLines += f.Lines
		totalCommits += f.Commits
	}
	_, err := fmt.Fprintf(w, "Showing top %d files (total lines: %d, total commits: %d)\n", len(repo.FileStats), totalLines, totalCommits)
	return err
}
