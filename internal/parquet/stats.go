package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/parquet-go/parquet-go"
)

// AuthorRow is one author's aggregated contribution for Parquet export.
type AuthorRow struct {
	// Repo is the display name of the repository
	Repo string `parquet:"repo,snappy"`

	// Author is the author's display name
	Author string `parquet:"author,snappy"`

	// Email is the author's email address
	Email string `parquet:"email,snappy"`

	// Lines is the number of surviving blame lines attributed to the author
	Lines int32 `parquet:"lines,snappy"`

	// Percentage is the author's share over the configured base
	Percentage float64 `parquet:"percentage,snappy"`

	// Commits is the number of non-excluded commits authored
	Commits int32 `parquet:"commits,snappy"`

	// Insertions is the total inserted line count from diff accounting
	Insertions int32 `parquet:"insertions,snappy"`

	// Deletions is the total deleted line count from diff accounting
	Deletions int32 `parquet:"deletions,snappy"`

	// Files is the number of distinct selected files touched
	Files int32 `parquet:"files,snappy"`
}

// FileRow is one file's aggregated activity for Parquet export.
type FileRow struct {
	// Repo is the display name of the repository
	Repo string `parquet:"repo,snappy"`

	// Path is the file path relative to the working tree root
	Path string `parquet:"path,snappy"`

	// Lines is the surviving line count at HEAD
	Lines int32 `parquet:"lines,snappy"`

	// Commits is the number of non-excluded commits touching the file
	Commits int32 `parquet:"commits,snappy"`

	// Authors is the number of distinct authors with surviving lines
	Authors int32 `parquet:"authors,snappy"`

	// Percentage is the file's share of the repository's surviving lines
	Percentage float64 `parquet:"percentage,snappy"`
}

// BlameRow is one attributed line for Parquet export.
type BlameRow struct {
	// Repo is the display name of the repository
	Repo string `parquet:"repo,snappy"`

	// Path is the file path relative to the working tree root
	Path string `parquet:"path,snappy"`

	// LineNumber is the 1-based line number at HEAD
	LineNumber int32 `parquet:"line_number,snappy"`

	// Author is the origin commit's author name
	Author string `parquet:"author,snappy"`

	// Email is the origin commit's author email
	Email string `parquet:"email,snappy"`

	// CommitHash is the origin commit hash
	CommitHash string `parquet:"commit_hash,snappy"`

	// CommitTime is the origin commit's author time
	CommitTime time.Time `parquet:"commit_time,snappy"`

	// Category is the line classification (code, comment, whitespace, empty)
	Category string `parquet:"category,snappy"`

	// Excluded reports whether the line's category is excluded from counts
	Excluded bool `parquet:"excluded,snappy"`

	// Content is the line content at HEAD
	Content string `parquet:"content,snappy"`
}

// WriteAuthorStatsParquet writes a slice of AuthorRow structs to a Parquet file.
func WriteAuthorStatsParquet(data []AuthorRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[AuthorRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteFileStatsParquet writes a slice of FileRow structs to a Parquet file.
func WriteFileStatsParquet(data []FileRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[FileRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteBlameParquet writes a slice of BlameRow structs to a Parquet file.
func WriteBlameParquet(data []BlameRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[BlameRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// ConvertAuthorStats converts one repository's author stats to AuthorRow
// values for Parquet export.
func ConvertAuthorStats(repo *schema.RepoResult) []AuthorRow {
	result := make([]AuthorRow, len(repo.AuthorStats))
	for i, a := range repo.AuthorStats {
		result[i] = AuthorRow{
			Repo:       repo.Name,
			Author:     a.Author,
			Email:      a.Email,
			Lines:      int32(a.Lines),
			Percentage: a.Percentage,
			Commits:    int32(a.Commits),
			Insertions: int32(a.Insertions),
			Deletions:  int32(a.Deletions),
			Files:      int32(a.Files),
		}
	}
	return result
}

// ConvertFileStats converts one repository's file stats to FileRow values for
// Parquet export.
func ConvertFileStats(repo *schema.RepoResult) []FileRow {
	result := make([]FileRow, len(repo.FileStats))
	for i, f := range repo.FileStats {
		result[i] = FileRow{
			Repo:       repo.Name,
			Path:       f.Path,
			Lines:      int32(f.Lines),
			Commits:    int32(f.Commits),
			Authors:    int32(f.Authors),
			Percentage: f.Percentage,
		}
	}
	return result
}

// ConvertBlameEntries converts one repository's blame entries to BlameRow
// values for Parquet export.
func ConvertBlameEntries(repo *schema.RepoResult) []BlameRow {
	result := make([]BlameRow, len(repo.BlameEntries))
	for i, e := range repo.BlameEntries {
		result[i] = BlameRow{
			Repo:       repo.Name,
			Path:       e.Path,
			LineNumber: int32(e.LineNumber),
			Author:     e.Author,
			Email:      e.Email,
			CommitHash: e.CommitHash,
			CommitTime: e.CommitTime,
			Category:   string(e.Category),
			Excluded:   e.Excluded,
			Content:    e.Content,
		}
	}
	return result
}
