// Package cmd defines the command-line interface for gitattrib.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the settings subcommands to the parent settings command
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSaveCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("depth", schema.DefaultDepth, "Levels of subfolders searched for repositories")
	rootCmd.PersistentFlags().String("subfolder", "", "Restrict discovery to repositories containing this relative path")
	rootCmd.PersistentFlags().IntP("n-files", "n", schema.DefaultNFiles, "Number of top files to analyze per repository (0 = unlimited)")
	rootCmd.PersistentFlags().StringSlice("include-files", nil, "Glob patterns selecting files to analyze")
	rootCmd.PersistentFlags().StringSlice("ex-files", nil, "Glob patterns excluding files from analysis")
	rootCmd.PersistentFlags().StringSlice("extensions", schema.DefaultExtensions, "Tracked file extensions (* matches every extension)")
	rootCmd.PersistentFlags().StringSlice("ex-authors", nil, "Author name patterns to exclude")
	rootCmd.PersistentFlags().StringSlice("ex-emails", nil, "Author email patterns to exclude")
	rootCmd.PersistentFlags().StringSlice("ex-revisions", nil, "Commit hash patterns to exclude")
	rootCmd.PersistentFlags().StringSlice("ex-messages", nil, "Commit message patterns to exclude")
	rootCmd.PersistentFlags().String("since", "", "Earliest commit date to include (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("until", "", "Latest commit date to include (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("outfile-base", schema.DefaultOutfileBase, "Base name for output files")
	rootCmd.PersistentFlags().String("fix", string(schema.PrefixFix), "Output basename decoration: prefix or postfix or nofix")
	rootCmd.PersistentFlags().StringSlice("file-formats", []string{string(schema.HTMLFormat)}, "Output file formats: html, excel, json, csv, parquet")
	rootCmd.PersistentFlags().String("view", string(schema.AutoView), "Result view opened by host applications: auto, dynamic-blame-history, none")
	rootCmd.PersistentFlags().Int("copy-move", 1, "Copy/move detection level 0-4 (0 disables)")
	rootCmd.PersistentFlags().Bool("scaled-percentages", false, "Drop negligible authors and rescale percentages to 100")
	rootCmd.PersistentFlags().String("percent-base", string(schema.LinesBase), "Percentage base: lines or commits")
	rootCmd.PersistentFlags().String("blame-exclusions", string(schema.HideExclusions), "Excluded blame line policy: hide or show or remove")
	rootCmd.PersistentFlags().Bool("blame-skip", false, "Skip blame and fall back to commit/diff accounting")
	rootCmd.PersistentFlags().Bool("show-renames", false, "Fold pre-rename history into the current path")
	rootCmd.PersistentFlags().Bool("deletions", false, "Count deleted lines in author stats")
	rootCmd.PersistentFlags().Bool("whitespace", false, "Count whitespace-only lines and edits")
	rootCmd.PersistentFlags().Bool("empty-lines", false, "Count empty lines")
	rootCmd.PersistentFlags().Bool("comments", false, "Count comment lines")
	rootCmd.PersistentFlags().Bool("multithread", true, "Analyze repositories on concurrent workers")
	rootCmd.PersistentFlags().Bool("multicore", false, "Additionally parallelize per-file blame within a repository")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 0, "Verbosity level 0-3")
	rootCmd.PersistentFlags().Int("dryrun", 0, "Dry-run level: 1 skips blame, 2 validates settings only")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Result cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the result cache")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyExportCmd to Viper
	historyExportCmd.Flags().String("output-file", "", "Base path for the exported Parquet files")
	if err := viper.BindPFlags(historyExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history export flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
