package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitattrib/gitattrib/core"
	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/outwriter"
	"github.com/gitattrib/gitattrib/internal/settingstore"
)

// settingsCmd focused on settings management.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persisted analysis settings",
	Long: `Manage the settings document that seeds every analysis run.

Persisted settings are the baseline configuration; config file, environment
variables and flags override them per invocation.

Subcommands:
  show  - Print the effective settings as JSON
  save  - Validate and persist the current flag/env/file configuration
  reset - Restore the documented defaults

Examples:
  # Inspect what the next run would use
  gitattrib settings show

  # Make an exclusion list the new baseline
  gitattrib settings save --ex-authors 'dependabot.*'`,
}

// settingsShowCmd prints the persisted settings.
var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted settings document as JSON",
	Run: func(_ *cobra.Command, _ []string) {
		settings, err := core.GetSettings()
		if err != nil {
			contract.LogFatal("Cannot load settings", err)
		}
		if err := outwriter.WriteSettingsJSON(os.Stdout, &settings); err != nil {
			contract.LogFatal("Cannot print settings", err)
		}
	},
}

// settingsSaveCmd persists the resolved configuration.
var settingsSaveCmd = &cobra.Command{
	Use:     "save",
	Short:   "Validate and persist the resolved configuration as the new baseline",
	PreRunE: settingsOnlySetup,
	Run: func(_ *cobra.Command, _ []string) {
		result := core.SaveSettings(st)
		if !result.Success {
			contract.LogWarn("Settings were not saved: "+result.Error, nil)
			os.Exit(1)
		}
		fmt.Println("Settings saved.")
	},
}

// settingsResetCmd restores the documented defaults.
var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the documented default settings",
	Run: func(_ *cobra.Command, _ []string) {
		store, err := settingstore.New()
		if err != nil {
			contract.LogFatal("Cannot open settings store", err)
		}
		if err := store.Reset(); err != nil {
			contract.LogFatal("Cannot reset settings", err)
		}
		fmt.Println("Settings reset to defaults.")
	},
}
