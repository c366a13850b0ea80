package iocache

import (
	"errors"
	"fmt"

	"github.com/gitattrib/gitattrib/internal/parquet"
)

// ExecuteHistoryExport exports the run history to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetHistoryStore()
	impl, ok := store.(*HistoryStoreImpl)
	if !ok || impl == nil {
		return errors.New("run history is not enabled")
	}

	status, err := impl.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.RunCount == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.RunCount)
	fmt.Printf("Total repo records: %d\n", status.RepoCount)

	runs, err := impl.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	repoStats, err := impl.GetAllRepoStats()
	if err != nil {
		return fmt.Errorf("failed to retrieve repo stats: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	repoStatsFile := outputFile + ".repo_stats.parquet"
	if err := parquet.WriteRepoStatsParquet(parquet.ConvertRepoStatRecords(repoStats), repoStatsFile); err != nil {
		return fmt.Errorf("failed to write repo stats: %w", err)
	}
	fmt.Printf("Exported %d repo records to: %s\n", len(repoStats), repoStatsFile)

	return nil
}
