package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famtime/backend/internal/family"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famtime.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8099", cfg.Listen)
	assert.Equal(t, 30, cfg.LookaheadDays)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Len(t, cfg.Members, 4)

	// The defaults must have been persisted for the next start.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadPartialConfigIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 0.0.0.0:9000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "Europe/Copenhagen", cfg.Timezone)
	assert.Equal(t, 30, cfg.LookaheadDays)
	assert.NotEmpty(t, cfg.Members)
	assert.NotNil(t, cfg.Feeds)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "famtime.yaml")

	in := &Config{
		Listen:        "127.0.0.1:9100",
		DataDir:       "/var/lib/famtime",
		LookaheadDays: 14,
		RefreshCron:   "*/5 * * * *",
		Feeds: []FeedConfig{
			{ID: "skole", Name: "Skolekalender", URL: "https://example.com/skole.ics"},
		},
		Members: []family.Member{
			{Name: "Mor", Role: "parent"},
			{Name: "Emma", Role: "child"},
		},
	}

	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveNilConfig(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
}

func TestNormalizeLeavesExplicitValues(t *testing.T) {
	cfg := &Config{
		Listen:        "0.0.0.0:1234",
		DataDir:       "/tmp/ft",
		Timezone:      "UTC",
		LookaheadDays: 7,
		RefreshCron:   "@hourly",
		Members:       []family.Member{{Name: "Far", Role: "parent"}},
	}
	cfg.Normalize()

	assert.Equal(t, "0.0.0.0:1234", cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 7, cfg.LookaheadDays)
	assert.Equal(t, "@hourly", cfg.RefreshCron)
	require.Len(t, cfg.Members, 1)
	assert.Equal(t, "Far", cfg.Members[0].Name)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, time.UTC, cfg.Location())
}
