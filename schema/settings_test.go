package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())
	assert.Equal(t, DefaultDepth, s.Depth)
	assert.Equal(t, DefaultNFiles, s.NFiles)
	assert.Equal(t, 1, s.CopyMove)
	assert.Equal(t, []OutputFormat{HTMLFormat}, s.FileFormats)
	assert.Equal(t, HideExclusions, s.BlameExclusions)
	assert.True(t, s.Multithread)
	assert.False(t, s.Multicore)
	assert.Contains(t, s.Extensions, "py")
}

func TestSettingsRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.InputFstrs = []string{"/tmp/repo-a", "/tmp/repo-b"}
	s.ExAuthors = []string{"bot.*"}
	s.Since = "2023-01-01"
	s.CopyMove = 3
	s.ScaledPercentages = true

	data, err := json.Marshal(&s)
	require.NoError(t, err)

	// No field may be dropped by round-trip serialization.
	decoded, err := DecodeSettings(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestDecodeSettingsRejectsUnknownFields(t *testing.T) {
	_, err := DecodeSettings([]byte(`{"depth": 3, "dept": 4}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings document")
}

func TestDecodeSettingsAppliesDefaults(t *testing.T) {
	decoded, err := DecodeSettings([]byte(`{"depth": 2}`))
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Depth)
	assert.Equal(t, DefaultNFiles, decoded.NFiles)
	assert.Equal(t, PrefixFix, decoded.Fix)
}

func TestSettingsValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"negative depth", func(s *Settings) { s.Depth = -1 }, "depth"},
		{"negative n_files", func(s *Settings) { s.NFiles = -2 }, "n_files"},
		{"copy_move too high", func(s *Settings) { s.CopyMove = 9 }, "copy_move"},
		{"bad fix", func(s *Settings) { s.Fix = "suffix" }, "fix"},
		{"bad exclusions", func(s *Settings) { s.BlameExclusions = "drop" }, "blame_exclusions"},
		{"bad percent base", func(s *Settings) { s.PercentBase = "churn" }, "percent_base"},
		{"bad format", func(s *Settings) { s.FileFormats = []OutputFormat{"pdf"} }, "output format"},
		{"bad backend", func(s *Settings) { s.CacheBackend = "redis" }, "cache backend"},
		{"bad since", func(s *Settings) { s.Since = "01/02/2023" }, "since"},
		{"inverted range", func(s *Settings) { s.Since = "2023-06-01"; s.Until = "2023-01-01" }, "precedes"},
		{"rising curve", func(s *Settings) { s.CopyMoveSimilarity = []float64{0.5, 0.9, 0.9, 0.9} }, "non-increasing"},
		{"short curve", func(s *Settings) { s.CopyMoveSimilarity = []float64{0.9} }, "thresholds"},
		{"verbosity", func(s *Settings) { s.Verbosity = 7 }, "verbosity"},
		{"dryrun", func(s *Settings) { s.DryRun = 5 }, "dryrun"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should mention %q", err, tt.want)
		})
	}
}

func TestDateBounds(t *testing.T) {
	s := DefaultSettings()
	s.Since = "2023-01-01"
	s.Until = "2023-12-31"

	since, until, err := s.DateBounds()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), since)
	// Until covers the whole named day.
	assert.True(t, until.After(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))

	open := DefaultSettings()
	since, until, err = open.DateBounds()
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	assert.True(t, until.IsZero())
}

func TestSimilarityThreshold(t *testing.T) {
	s := DefaultSettings()

	s.CopyMove = 0
	assert.Greater(t, s.SimilarityThreshold(), 1.0)

	s.CopyMove = 1
	assert.Equal(t, 1.0, s.SimilarityThreshold())

	s.CopyMove = 4
	assert.Equal(t, DefaultCopyMoveSimilarity[3], s.SimilarityThreshold())

	// Custom curves override the defaults level by level.
	s.CopyMoveSimilarity = []float64{1.0, 0.8, 0.6, 0.4}
	s.CopyMove = 2
	assert.Equal(t, 0.8, s.SimilarityThreshold())
}

func TestSettingsCloneIsDeep(t *testing.T) {
	s := DefaultSettings()
	s.InputFstrs = []string{"/repo"}
	clone := s.Clone()
	clone.InputFstrs[0] = "/other"
	clone.Extensions[0] = "zz"

	assert.Equal(t, "/repo", s.InputFstrs[0])
	assert.NotEqual(t, "zz", s.Extensions[0])
}

func TestSettingsHashChangesWithContent(t *testing.T) {
	a := DefaultSettings()
	b := DefaultSettings()
	assert.Equal(t, a.Hash(), b.Hash())

	b.NFiles = 100
	assert.NotEqual(t, a.Hash(), b.Hash())
}
