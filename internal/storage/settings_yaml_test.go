package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewSettingsStore(filepath.Join(t.TempDir(), "calmtide", "settings.yaml"))

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calmtide", "settings.yaml")
	store := NewSettingsStore(path)

	settings := DefaultSettings()
	settings.FocusMinutes = 50
	settings.BreakMinutes = 10
	settings.SessionLabel = "Thesis"
	settings.Exercise = "478"
	settings.IdlePauseEnabled = false
	settings.IdlePauseAfter = 3 * time.Minute
	settings.DatabaseDriver = DriverPostgres
	settings.DatabaseDSN = "postgres://localhost/calmtide"
	settings.MetricsAddress = "127.0.0.1:9464"
	require.NoError(t, store.Save(settings))

	reloaded := NewSettingsStore(path)
	loaded, err := reloaded.Load()

	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadIsCachedUntilInvalidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus_minutes: 40\n"), 0o644))
	store := NewSettingsStore(path)

	first, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 40, first.FocusMinutes)

	require.NoError(t, os.WriteFile(path, []byte("focus_minutes: 45\n"), 0o644))
	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cached.FocusMinutes)

	store.Invalidate()
	fresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 45, fresh.FocusMinutes)
}

func TestLoadIgnoresOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := "focus_minutes: -5\nbreak_minutes: 0\nbreathing_opacity: 3\nidle_pause_enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	settings, err := NewSettingsStore(path).Load()

	require.NoError(t, err)
	defaults := DefaultSettings()
	assert.Equal(t, defaults.FocusMinutes, settings.FocusMinutes)
	assert.Equal(t, defaults.BreakMinutes, settings.BreakMinutes)
	assert.Equal(t, defaults.BreathingOpacity, settings.BreathingOpacity)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus_minutes: [1,"), 0o644))

	settings, err := NewSettingsStore(path).Load()

	require.Error(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSettingsConversions(t *testing.T) {
	settings := DefaultSettings()
	settings.FocusMinutes = 30

	config := settings.TimeKeeperConfig()

	assert.Equal(t, 30, config.Session.FocusDurationMinutes)
	assert.Equal(t, 5, config.Session.BreakDurationMinutes)
	assert.Equal(t, "Focus", config.Session.SessionLabel)
	assert.True(t, config.IdlePauseEnabled)
	assert.Equal(t, 5*time.Minute, config.IdlePauseAfter)
}

func TestSettingsPath(t *testing.T) {
	store := NewSettingsStore(SettingsPath("/tmp/calmtide"))

	assert.Equal(t, filepath.Join("/tmp/calmtide", "settings.yaml"), store.Path())
	assert.Equal(t, "/tmp/calmtide", store.Dir())
}
