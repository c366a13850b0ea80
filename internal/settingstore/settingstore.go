// Package settingstore persists analysis settings to the user's profile.
package settingstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gitattrib/gitattrib/schema"
)

const settingsFileName = "settings.json"

// Store reads and writes the persisted settings document.
type Store struct {
	path string
}

// New creates a store rooted at the user config directory
// (e.g. ~/.config/gitattrib/settings.json).
func New() (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve user config directory: %w", err)
	}
	return NewAt(filepath.Join(configDir, "gitattrib", settingsFileName)), nil
}

// NewAt creates a store using an explicit file path. Used by tests and by
// hosts that manage their own profile location.
func NewAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the persisted settings document.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings, or the documented defaults when
// nothing has been persisted yet. A corrupt document is an error, not a
// silent reset.
func (s *Store) Load() (schema.Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.DefaultSettings(), nil
	}
	if err != nil {
		return schema.Settings{}, fmt.Errorf("cannot read settings at %s: %w", s.path, err)
	}
	settings, err := schema.DecodeSettings(data)
	if err != nil {
		return schema.Settings{}, fmt.Errorf("cannot parse settings at %s: %w", s.path, err)
	}
	return settings, nil
}

// Save validates and persists the settings document atomically: the document
// is written to a temp file in the same directory and renamed into place.
func (s *Store) Save(settings *schema.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), settingsFileName+".*")
	if err != nil {
		return fmt.Errorf("cannot stage settings write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot finalize settings write: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install settings: %w", err)
	}
	return nil
}

// Reset removes the persisted document so the next Load yields defaults.
func (s *Store) Reset() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
