// Package parquet exports run history and per-repository statistics to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/gitattrib/gitattrib/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single analysis run with metadata.
// This struct maps to the attrib_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRepos is the number of repositories processed in this run
	TotalRepos int32 `parquet:"total_repos,snappy"`

	// Success reports whether every repository task succeeded
	Success bool `parquet:"success,snappy"`

	// SettingsJSON is the JSON-encoded settings snapshot (nullable)
	SettingsJSON *string `parquet:"settings_json,optional,snappy"`
}

// RepoStat represents the aggregated outcome for one repository in a run.
// This struct maps to the attrib_repo_stats database table.
type RepoStat struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// RepoName is the display name of the repository
	RepoName string `parquet:"repo_name,snappy"`

	// RepoPath is the absolute path to the working tree root
	RepoPath string `parquet:"repo_path,snappy"`

	// AnalyzedAt is when the repository finished processing
	AnalyzedAt time.Time `parquet:"analyzed_at,snappy"`

	// AuthorCount is the number of distinct authors in the result
	AuthorCount int32 `parquet:"author_count,snappy"`

	// FileCount is the number of files in the result
	FileCount int32 `parquet:"file_count,snappy"`

	// LineCount is the total surviving line count across files
	LineCount int32 `parquet:"line_count,snappy"`

	// CommitCount is the total number of commits across authors
	CommitCount int32 `parquet:"commit_count,snappy"`

	// Success reports whether the repository task completed
	Success bool `parquet:"success,snappy"`

	// ErrorText holds the failure reason for failed tasks (nullable)
	ErrorText *string `parquet:"error_text,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteRepoStatsParquet writes a slice of RepoStat structs to a Parquet file.
func WriteRepoStatsParquet(data []RepoStat, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is derived from the RepoStat struct tags
	writer := parquet.NewGenericWriter[RepoStat](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord rows to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRepos:    record.TotalRepos,
			Success:       record.Success,
			SettingsJSON:  record.SettingsJSON,
		}
	}
	return result
}

// ConvertRepoStatRecords converts schema.RepoStatRecord rows to RepoStat for
// Parquet export.
func ConvertRepoStatRecords(records []schema.RepoStatRecord) []RepoStat {
	result := make([]RepoStat, len(records))
	for i, record := range records {
		result[i] = RepoStat{
			RunID:       record.RunID,
			RepoName:    record.RepoName,
			RepoPath:    record.RepoPath,
			AnalyzedAt:  record.AnalyzedAt,
			AuthorCount: record.AuthorCount,
			FileCount:   record.FileCount,
			LineCount:   record.LineCount,
			CommitCount: record.CommitCount,
			Success:     record.Success,
			ErrorText:   record.ErrorText,
		}
	}
	return result
}
