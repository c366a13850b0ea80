package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/iocache"
	"github.com/gitattrib/gitattrib/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This avoids repository discovery and settings resolution for simple
// cache commands.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	st = schema.DefaultSettings()
	st.CacheBackend = schema.DatabaseBackend(viper.GetString("cache-backend"))
	st.CacheDBConnect = viper.GetString("cache-db-connect")
	st.HistoryBackend = schema.NoneBackend

	if err := iocache.InitCaching(&st); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	cacheManager = iocache.Manager

	return nil
}

// cacheCmd focused on result cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the per-repository result cache (improves performance)",
	Long: `Manage the cache of per-repository analysis results.

Results are cached keyed by HEAD commit and settings digest, so repeated runs
over an unchanged repository skip history walking and blame entirely.

Supported backends: SQLite (default file in the home directory), MySQL,
PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  gitattrib cache status --cache-backend sqlite

  # Clear cache after history rewrites
  gitattrib cache clear --cache-backend sqlite`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	Long: `Delete all cached analysis results from the configured backend.

Use this when repository history was rewritten or the cache may be stale.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache
  gitattrib cache clear --cache-backend sqlite

  # Clear MySQL cache (set connection string via env variable)
  GITATTRIB_CACHE_BACKEND=mysql GITATTRIB_CACHE_DB_CONNECT="..." gitattrib cache clear`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(st.CacheBackend, contract.DefaultCacheDBPath(), st.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the result cache.

Displays:
- Backend type and location
- Total number of cached entries
- Oldest and newest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  gitattrib cache status --cache-backend sqlite`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}
