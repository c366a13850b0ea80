package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/parquet"
	"github.com/gitattrib/gitattrib/schema"
)

// writeResultFiles writes one set of output files per repository for every
// configured file format. Failed repositories are skipped; their error text is
// already part of the printed result.
func writeResultFiles(result *schema.AnalysisResult, st *schema.Settings) error {
	for i := range result.Repos {
		repo := &result.Repos[i]
		if !repo.Success {
			continue
		}
		base := outputBasename(st, repo.Name)
		for _, format := range st.FileFormats {
			if err := writeRepoFiles(repo, base, format); err != nil {
				return fmt.Errorf("error writing %s output for %s: %w", format, repo.Name, err)
			}
		}
	}
	return nil
}

// writeRepoFiles dispatches one repository to the writer for one format.
func writeRepoFiles(repo *schema.RepoResult, base string, format schema.OutputFormat) error {
	switch format {
	case schema.JSONFormat:
		return writeWithFile(base+".json", func(w io.Writer) error {
			return writeJSON(w, repo)
		}, "Wrote JSON")
	case schema.CSVFormat:
		return writeRepoCSVFiles(repo, base)
	case schema.ParquetFormat:
		return writeRepoParquetFiles(repo, base)
	case schema.HTMLFormat, schema.ExcelFormat:
		// Rendered views are produced by host applications from the raw
		// result; the CLI only emits data formats.
		contract.LogWarn(fmt.Sprintf("format %q has no CLI writer; skipping", format), nil)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeRepoCSVFiles writes the authors, files and blame CSV files for one
// repository.
func writeRepoCSVFiles(repo *schema.RepoResult, base string) error {
	if err := writeWithFile(base+".authors.csv", func(w io.Writer) error {
		return writeCSVWithHeader(w, authorCSVHeader, func(cw *csv.Writer) error {
			return writeAuthorCSVRows(cw, repo)
		})
	}, "Wrote CSV"); err != nil {
		return err
	}
	if err := writeWithFile(base+".files.csv", func(w io.Writer) error {
		return writeCSVWithHeader(w, fileCSVHeader, func(cw *csv.Writer) error {
			return writeFileCSVRows(cw, repo)
		})
	}, "Wrote CSV"); err != nil {
		return err
	}
	return writeWithFile(base+".blame.csv", func(w io.Writer) error {
		return writeCSVWithHeader(w, blameCSVHeader, func(cw *csv.Writer) error {
			return writeBlameCSVRows(cw, repo)
		})
	}, "Wrote CSV")
}

// writeRepoParquetFiles writes the authors, files and blame Parquet files for
// one repository.
func writeRepoParquetFiles(repo *schema.RepoResult, base string) error {
	if err := parquet.WriteAuthorStatsParquet(parquet.ConvertAuthorStats(repo), base+".authors.parquet"); err != nil {
		return err
	}
	if err := parquet.WriteFileStatsParquet(parquet.ConvertFileStats(repo), base+".files.parquet"); err != nil {
		return err
	}
	return parquet.WriteBlameParquet(parquet.ConvertBlameEntries(repo), base+".blame.parquet")
}
