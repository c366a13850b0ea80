package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitattrib/gitattrib/core"
	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/iocache"
	"github.com/gitattrib/gitattrib/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// st holds the resolved settings for the current invocation.
var st schema.Settings

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "gitattrib",
	Short:              "Analyze git repositories for per-author and per-file contribution statistics.",
	Long:               `Gitattrib walks commit history and line-level blame to show who wrote the surviving code, adjusted for renames and copy/move reattribution.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".gitattrib") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")     // Look in the current directory
		viper.AddConfigPath("$HOME") // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("GITATTRIB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".gitattrib")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// resolveSettings merges all configuration sources into st. Precedence is
// flag > env > config file > persisted settings > documented defaults.
func resolveSettings() error {
	base, err := core.GetSettings()
	if err != nil {
		return fmt.Errorf("unable to load persisted settings: %w", err)
	}
	setSettingsDefaults(&base)
	st = settingsFromViper()
	return nil
}

// sharedSetup resolves settings and initializes the persistence layer.
func sharedSetup(_ *cobra.Command, args []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := resolveSettings(); err != nil {
		return err
	}

	// Positional arguments name the repositories to analyze.
	if len(args) > 0 {
		st.InputFstrs = args
	}
	if len(st.InputFstrs) == 0 {
		st.InputFstrs = []string{"."}
	}

	if err := iocache.InitCaching(&st); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	cacheManager = iocache.Manager

	return nil
}

// settingsOnlySetup resolves settings without touching the persistence layer.
func settingsOnlySetup(_ *cobra.Command, args []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := resolveSettings(); err != nil {
		return err
	}
	if len(args) > 0 {
		st.InputFstrs = args
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
