package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitattrib/gitattrib/core"
	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/outwriter"
	"github.com/gitattrib/gitattrib/schema"
)

// runCmd performs contribution analysis over the configured repositories.
var runCmd = &cobra.Command{
	Use:   "run [repo-path...]",
	Short: "Analyze repositories and report per-author and per-file statistics.",
	Long: `Walk commit history and line-level blame for each repository and report
who wrote the surviving code.

Positional arguments name the repositories or folders to search; folders are
searched to --depth levels for working trees. Without arguments the current
directory is analyzed.

Examples:
  # Analyze the current repository
  gitattrib run

  # Analyze two repositories, excluding a bot author
  gitattrib run ~/src/app ~/src/lib --ex-authors 'dependabot.*'

  # Restrict to a date window and export CSV files
  gitattrib run --since 2024-01-01 --until 2024-06-30 --file-formats csv

  # Rank every tracked Python file instead of the top five
  gitattrib run --n-files 0 --extensions py`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		client := contract.NewLocalGitClient()
		result, err := core.ExecuteAnalysis(rootCtx, st, client, cacheManager)
		if err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}

		if st.DryRun >= schema.MaxDryRun {
			fmt.Println("Settings are valid.")
			return
		}

		ow := outwriter.NewOutWriter()
		if err := ow.WriteResult(os.Stdout, &result, &st, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write result", err)
		}
		if st.DryRun == 0 {
			if err := ow.WriteResultFiles(&result, &st); err != nil {
				contract.LogFatal("Cannot write output files", err)
			}
		}

		if !result.Success {
			os.Exit(1)
		}
	},
}
