package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/iocache"
	"github.com/gitattrib/gitattrib/schema"
)

// historySetup loads minimal configuration needed for history operations.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	st = schema.DefaultSettings()
	st.CacheBackend = schema.NoneBackend
	st.HistoryBackend = historyBackendFromViper()
	st.HistoryDBConnect = viper.GetString("history-db-connect")

	if err := iocache.InitCaching(&st); err != nil {
		return fmt.Errorf("failed to initialize history store: %w", err)
	}
	cacheManager = iocache.Manager

	return nil
}

// historyMigrateSetup loads configuration without initializing stores, so
// migrations can run against a fresh database before any table exists.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	st = schema.DefaultSettings()
	st.HistoryBackend = historyBackendFromViper()
	st.HistoryDBConnect = viper.GetString("history-db-connect")

	// For SQLite with an empty connection string, use the default path.
	if st.HistoryBackend == schema.SQLiteBackend && st.HistoryDBConnect == "" {
		st.HistoryDBConnect = contract.DefaultHistoryDBPath()
	}

	return nil
}

func historyBackendFromViper() schema.DatabaseBackend {
	backendStr := viper.GetString("history-backend")
	if backendStr == "" {
		return schema.NoneBackend
	}
	return schema.DatabaseBackend(backendStr)
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage run history tracking and exports",
	Long: `Manage the historical record of analysis runs.

When enabled, gitattrib records every run, storing:
- Run metadata (timestamp, settings snapshot, duration)
- Per-repository aggregates (authors, files, lines, commits)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check history status
  gitattrib history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  gitattrib history export --history-backend sqlite --output-file runs-data`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded analysis runs",
	Long: `Delete all stored runs and per-repository aggregates.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  gitattrib history export --history-backend sqlite --output-file backup
  gitattrib history clear --history-backend sqlite`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(st.HistoryBackend, contract.DefaultHistoryDBPath(), st.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about run history tracking.

Displays:
- Backend type and location
- Total number of recorded runs and repository entries
- Timestamp of the most recent run

Examples:
  # Check history status
  gitattrib history status --history-backend sqlite`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet format for use with analytics tools.

Exports two datasets:
- Runs - metadata about each analysis execution
- Repository stats - per-repository aggregates for each run

Requires: --output-file parameter

Examples:
  # Export all data
  gitattrib history export --history-backend sqlite --output-file attrib-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('attrib-data.runs.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific
versions; 0 rolls back to the initial state.

Examples:
  # Migrate to latest version (default)
  gitattrib history migrate --history-backend sqlite

  # Rollback to initial state
  gitattrib history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(st.HistoryBackend, st.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
