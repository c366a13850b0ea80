package schema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"
	"time"
)

// Default values for analysis settings.
const (
	DefaultDepth       = 5
	DefaultNFiles      = 5
	DefaultOutfileBase = "gitattrib"
	MaxDepth           = 100
	MaxVerbosity       = 3
	MaxDryRun          = 2
)

// DefaultWorkers is the default number of concurrent repository workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the accepted layout for the since/until date bounds.
const DateFormat = "2006-01-02"

// DefaultCopyMoveSimilarity is the similarity threshold curve for copy/move
// levels 1-4. Level 1 requires exact content matches; each higher level
// loosens the required similarity. Index 0 corresponds to level 1.
var DefaultCopyMoveSimilarity = []float64{1.0, 0.9, 0.75, 0.55}

// Settings holds the full configuration for one analysis run. It is treated
// as an immutable snapshot once handed to the engine; every field has a
// documented default and survives a JSON round-trip unchanged.
type Settings struct {
	InputFstrs   []string `json:"input_fstrs" mapstructure:"input_fstrs"`
	Depth        int      `json:"depth" mapstructure:"depth"`
	Subfolder    string   `json:"subfolder" mapstructure:"subfolder"`
	NFiles       int      `json:"n_files" mapstructure:"n_files"`
	IncludeFiles []string `json:"include_files" mapstructure:"include_files"`
	ExFiles      []string `json:"ex_files" mapstructure:"ex_files"`
	Extensions   []string `json:"extensions" mapstructure:"extensions"`

	ExAuthors   []string `json:"ex_authors" mapstructure:"ex_authors"`
	ExEmails    []string `json:"ex_emails" mapstructure:"ex_emails"`
	ExRevisions []string `json:"ex_revisions" mapstructure:"ex_revisions"`
	ExMessages  []string `json:"ex_messages" mapstructure:"ex_messages"`
	Since       string   `json:"since" mapstructure:"since"`
	Until       string   `json:"until" mapstructure:"until"`

	OutfileBase string         `json:"outfile_base" mapstructure:"outfile_base"`
	Fix         FixMode        `json:"fix" mapstructure:"fix"`
	FileFormats []OutputFormat `json:"file_formats" mapstructure:"file_formats"`
	View        ViewMode       `json:"view" mapstructure:"view"`

	CopyMove           int             `json:"copy_move" mapstructure:"copy_move"`
	CopyMoveSimilarity []float64       `json:"copy_move_similarity" mapstructure:"copy_move_similarity"`
	ScaledPercentages  bool            `json:"scaled_percentages" mapstructure:"scaled_percentages"`
	PercentBase        PercentBase     `json:"percent_base" mapstructure:"percent_base"`
	BlameExclusions    BlameExclusions `json:"blame_exclusions" mapstructure:"blame_exclusions"`
	BlameSkip          bool            `json:"blame_skip" mapstructure:"blame_skip"`
	ShowRenames        bool            `json:"show_renames" mapstructure:"show_renames"`

	Deletions  bool `json:"deletions" mapstructure:"deletions"`
	Whitespace bool `json:"whitespace" mapstructure:"whitespace"`
	EmptyLines bool `json:"empty_lines" mapstructure:"empty_lines"`
	Comments   bool `json:"comments" mapstructure:"comments"`

	Multithread bool `json:"multithread" mapstructure:"multithread"`
	Multicore   bool `json:"multicore" mapstructure:"multicore"`
	Verbosity   int  `json:"verbosity" mapstructure:"verbosity"`
	DryRun      int  `json:"dryrun" mapstructure:"dryrun"`

	CacheBackend     DatabaseBackend `json:"cache_backend" mapstructure:"cache_backend"`
	CacheDBConnect   string          `json:"cache_db_connect" mapstructure:"cache_db_connect"`
	HistoryBackend   DatabaseBackend `json:"history_backend" mapstructure:"history_backend"`
	HistoryDBConnect string          `json:"history_db_connect" mapstructure:"history_db_connect"`
}

// DefaultSettings returns the documented default configuration.
func DefaultSettings() Settings {
	return Settings{
		InputFstrs:         []string{},
		Depth:              DefaultDepth,
		Subfolder:          "",
		NFiles:             DefaultNFiles,
		IncludeFiles:       []string{},
		ExFiles:            []string{},
		Extensions:         append([]string{}, DefaultExtensions...),
		ExAuthors:          []string{},
		ExEmails:           []string{},
		ExRevisions:        []string{},
		ExMessages:         []string{},
		Since:              "",
		Until:              "",
		OutfileBase:        DefaultOutfileBase,
		Fix:                PrefixFix,
		FileFormats:        []OutputFormat{HTMLFormat},
		View:               AutoView,
		CopyMove:           1,
		CopyMoveSimilarity: append([]float64{}, DefaultCopyMoveSimilarity...),
		ScaledPercentages:  false,
		PercentBase:        LinesBase,
		BlameExclusions:    HideExclusions,
		BlameSkip:          false,
		ShowRenames:        false,
		Deletions:          false,
		Whitespace:         false,
		EmptyLines:         false,
		Comments:           false,
		Multithread:        true,
		Multicore:          false,
		Verbosity:          0,
		DryRun:             0,
		CacheBackend:       NoneBackend,
		CacheDBConnect:     "",
		HistoryBackend:     NoneBackend,
		HistoryDBConnect:   "",
	}
}

// Validate checks all enumerated and bounded fields. It returns the first
// violation found; a Settings value that validates is safe to hand to the
// engine without further checks.
func (s *Settings) Validate() error {
	if s.Depth < 0 || s.Depth > MaxDepth {
		return fmt.Errorf("depth must be between 0 and %d, got %d", MaxDepth, s.Depth)
	}
	if s.NFiles < 0 {
		return fmt.Errorf("n_files must be >= 0, got %d", s.NFiles)
	}
	if s.CopyMove < 0 || s.CopyMove > CopyMoveMax {
		return fmt.Errorf("copy_move must be between 0 and %d, got %d", CopyMoveMax, s.CopyMove)
	}
	if len(s.CopyMoveSimilarity) != 0 && len(s.CopyMoveSimilarity) != CopyMoveMax {
		return fmt.Errorf("copy_move_similarity must have %d thresholds, got %d", CopyMoveMax, len(s.CopyMoveSimilarity))
	}
	for i, t := range s.CopyMoveSimilarity {
		if t <= 0 || t > 1 {
			return fmt.Errorf("copy_move_similarity[%d] must be in (0, 1], got %g", i, t)
		}
		if i > 0 && t > s.CopyMoveSimilarity[i-1] {
			return fmt.Errorf("copy_move_similarity must be non-increasing, got %g after %g", t, s.CopyMoveSimilarity[i-1])
		}
	}
	if _, ok := ValidFixModes[s.Fix]; !ok {
		return fmt.Errorf("fix must be prefix, postfix or nofix, got %q", s.Fix)
	}
	if _, ok := ValidViewModes[s.View]; !ok {
		return fmt.Errorf("unsupported view mode %q", s.View)
	}
	if _, ok := ValidBlameExclusions[s.BlameExclusions]; !ok {
		return fmt.Errorf("blame_exclusions must be hide, show or remove, got %q", s.BlameExclusions)
	}
	if _, ok := ValidPercentBases[s.PercentBase]; !ok {
		return fmt.Errorf("percent_base must be lines or commits, got %q", s.PercentBase)
	}
	for _, f := range s.FileFormats {
		if _, ok := ValidOutputFormats[f]; !ok {
			return fmt.Errorf("unsupported output format %q", f)
		}
	}
	if _, ok := ValidDatabaseBackends[s.CacheBackend]; !ok {
		return fmt.Errorf("unsupported cache backend %q", s.CacheBackend)
	}
	if _, ok := ValidDatabaseBackends[s.HistoryBackend]; !ok {
		return fmt.Errorf("unsupported history backend %q", s.HistoryBackend)
	}
	if s.Verbosity < 0 || s.Verbosity > MaxVerbosity {
		return fmt.Errorf("verbosity must be between 0 and %d, got %d", MaxVerbosity, s.Verbosity)
	}
	if s.DryRun < 0 || s.DryRun > MaxDryRun {
		return fmt.Errorf("dryrun must be between 0 and %d, got %d", MaxDryRun, s.DryRun)
	}
	if _, _, err := s.DateBounds(); err != nil {
		return err
	}
	return nil
}

// DateBounds parses the since/until fields into time bounds. Empty strings
// produce zero times, which the pipeline treats as open-ended.
func (s *Settings) DateBounds() (since, until time.Time, err error) {
	if s.Since != "" {
		since, err = time.Parse(DateFormat, s.Since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid since date %q: expected YYYY-MM-DD", s.Since)
		}
	}
	if s.Until != "" {
		until, err = time.Parse(DateFormat, s.Until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid until date %q: expected YYYY-MM-DD", s.Until)
		}
		// Until is inclusive of the named day.
		until = until.Add(24*time.Hour - time.Nanosecond)
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return time.Time{}, time.Time{}, fmt.Errorf("until date %q precedes since date %q", s.Until, s.Since)
	}
	return since, until, nil
}

// SimilarityThreshold returns the similarity required at the configured
// copy/move level. Level 0 never matches and returns a threshold above 1.
func (s *Settings) SimilarityThreshold() float64 {
	if s.CopyMove <= 0 {
		return 2
	}
	curve := s.CopyMoveSimilarity
	if len(curve) != CopyMoveMax {
		curve = DefaultCopyMoveSimilarity
	}
	level := min(s.CopyMove, CopyMoveMax)
	return curve[level-1]
}

// Clone returns a deep copy of the settings snapshot.
func (s *Settings) Clone() Settings {
	clone := *s
	clone.InputFstrs = append([]string{}, s.InputFstrs...)
	clone.IncludeFiles = append([]string{}, s.IncludeFiles...)
	clone.ExFiles = append([]string{}, s.ExFiles...)
	clone.Extensions = append([]string{}, s.Extensions...)
	clone.ExAuthors = append([]string{}, s.ExAuthors...)
	clone.ExEmails = append([]string{}, s.ExEmails...)
	clone.ExRevisions = append([]string{}, s.ExRevisions...)
	clone.ExMessages = append([]string{}, s.ExMessages...)
	clone.FileFormats = append([]OutputFormat{}, s.FileFormats...)
	clone.CopyMoveSimilarity = append([]float64{}, s.CopyMoveSimilarity...)
	return clone
}

// Hash returns a stable digest of the settings snapshot, used as part of
// cache keys so a settings change invalidates cached repository results.
func (s *Settings) Hash() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DecodeSettings parses a JSON document into Settings, rejecting unknown
// fields so misspelled configuration keys fail loudly at the boundary.
func DecodeSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings document: %w", err)
	}
	return s, nil
}
