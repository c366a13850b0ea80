package cmd

import (
	"github.com/spf13/viper"

	"github.com/gitattrib/gitattrib/schema"
)

// setSettingsDefaults seeds viper with the persisted settings so that config
// file, environment and flag values override them in the usual order.
func setSettingsDefaults(base *schema.Settings) {
	viper.SetDefault("input", base.InputFstrs)
	viper.SetDefault("depth", base.Depth)
	viper.SetDefault("subfolder", base.Subfolder)
	viper.SetDefault("n-files", base.NFiles)
	viper.SetDefault("include-files", base.IncludeFiles)
	viper.SetDefault("ex-files", base.ExFiles)
	viper.SetDefault("extensions", base.Extensions)
	viper.SetDefault("ex-authors", base.ExAuthors)
	viper.SetDefault("ex-emails", base.ExEmails)
	viper.SetDefault("ex-revisions", base.ExRevisions)
	viper.SetDefault("ex-messages", base.ExMessages)
	viper.SetDefault("since", base.Since)
	viper.SetDefault("until", base.Until)
	viper.SetDefault("outfile-base", base.OutfileBase)
	viper.SetDefault("fix", string(base.Fix))
	viper.SetDefault("file-formats", formatStrings(base.FileFormats))
	viper.SetDefault("view", string(base.View))
	viper.SetDefault("copy-move", base.CopyMove)
	viper.SetDefault("scaled-percentages", base.ScaledPercentages)
	viper.SetDefault("percent-base", string(base.PercentBase))
	viper.SetDefault("blame-exclusions", string(base.BlameExclusions))
	viper.SetDefault("blame-skip", base.BlameSkip)
	viper.SetDefault("show-renames", base.ShowRenames)
	viper.SetDefault("deletions", base.Deletions)
	viper.SetDefault("whitespace", base.Whitespace)
	viper.SetDefault("empty-lines", base.EmptyLines)
	viper.SetDefault("comments", base.Comments)
	viper.SetDefault("multithread", base.Multithread)
	viper.SetDefault("multicore", base.Multicore)
	viper.SetDefault("verbosity", base.Verbosity)
	viper.SetDefault("dryrun", base.DryRun)
	viper.SetDefault("cache-backend", string(base.CacheBackend))
	viper.SetDefault("cache-db-connect", base.CacheDBConnect)
	viper.SetDefault("history-backend", string(base.HistoryBackend))
	viper.SetDefault("history-db-connect", base.HistoryDBConnect)
}

// settingsFromViper reads the fully merged configuration back into a Settings
// snapshot. Validation happens in the engine, not here.
func settingsFromViper() schema.Settings {
	s := schema.DefaultSettings()
	s.InputFstrs = viper.GetStringSlice("input")
	s.Depth = viper.GetInt("depth")
	s.Subfolder = viper.GetString("subfolder")
	s.NFiles = viper.GetInt("n-files")
	s.IncludeFiles = viper.GetStringSlice("include-files")
	s.ExFiles = viper.GetStringSlice("ex-files")
	s.Extensions = viper.GetStringSlice("extensions")
	s.ExAuthors = viper.GetStringSlice("ex-authors")
	s.ExEmails = viper.GetStringSlice("ex-emails")
	s.ExRevisions = viper.GetStringSlice("ex-revisions")
	s.ExMessages = viper.GetStringSlice("ex-messages")
	s.Since = viper.GetString("since")
	s.Until = viper.GetString("until")
	s.OutfileBase = viper.GetString("outfile-base")
	s.Fix = schema.FixMode(viper.GetString("fix"))
	s.FileFormats = parseFormats(viper.GetStringSlice("file-formats"))
	s.View = schema.ViewMode(viper.GetString("view"))
	s.CopyMove = viper.GetInt("copy-move")
	s.ScaledPercentages = viper.GetBool("scaled-percentages")
	s.PercentBase = schema.PercentBase(viper.GetString("percent-base"))
	s.BlameExclusions = schema.BlameExclusions(viper.GetString("blame-exclusions"))
	s.BlameSkip = viper.GetBool("blame-skip")
	s.ShowRenames = viper.GetBool("show-renames")
	s.Deletions = viper.GetBool("deletions")
	s.Whitespace = viper.GetBool("whitespace")
	s.EmptyLines = viper.GetBool("empty-lines")
	s.Comments = viper.GetBool("comments")
	s.Multithread = viper.GetBool("multithread")
	s.Multicore = viper.GetBool("multicore")
	s.Verbosity = viper.GetInt("verbosity")
	s.DryRun = viper.GetInt("dryrun")
	s.CacheBackend = schema.DatabaseBackend(viper.GetString("cache-backend"))
	s.CacheDBConnect = viper.GetString("cache-db-connect")
	s.HistoryBackend = schema.DatabaseBackend(viper.GetString("history-backend"))
	s.HistoryDBConnect = viper.GetString("history-db-connect")
	return s
}

func formatStrings(formats []schema.OutputFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func parseFormats(raw []string) []schema.OutputFormat {
	out := make([]schema.OutputFormat, len(raw))
	for i, f := range raw {
		out[i] = schema.OutputFormat(f)
	}
	return out
}
