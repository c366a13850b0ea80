// Package core implements the repository analysis pipeline: repository
// discovery, history walking, blame extraction, line classification,
// copy/move resolution and statistics aggregation.
package core

import (
	"context"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/settingstore"
	"github.com/gitattrib/gitattrib/schema"
)

// GetSettings returns the last persisted configuration, or the documented
// defaults when nothing has been persisted.
func GetSettings() (schema.Settings, error) {
	store, err := settingstore.New()
	if err != nil {
		return schema.Settings{}, err
	}
	return store.Load()
}

// SaveSettings validates and persists a configuration snapshot. Validation
// failures produce success=false with a descriptive error, never a crash.
func SaveSettings(settings schema.Settings) schema.SaveResult {
	store, err := settingstore.New()
	if err != nil {
		return schema.SaveResult{Success: false, Error: err.Error()}
	}
	if err := store.Save(&settings); err != nil {
		return schema.SaveResult{Success: false, Error: err.Error()}
	}
	return schema.SaveResult{Success: true}
}

// ExecuteAnalysis runs the pipeline against a settings snapshot using the
// given git client and persistence manager. mgr may be nil to disable
// caching and run history.
func ExecuteAnalysis(ctx context.Context, settings schema.Settings, client contract.GitClient, mgr contract.CacheManager) (schema.AnalysisResult, error) {
	return NewEngine(client, mgr).ExecuteAnalysis(ctx, settings)
}
