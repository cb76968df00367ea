package preferences

import (
	"testing"
	"time"

	"calmtide/internal/core/phases"
	"calmtide/internal/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestSaveCollectsForm(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var saved storage.Settings
	prefs := New(app, storage.DefaultSettings(), phases.Builtin().Exercises(), func(settings storage.Settings) {
		saved = settings
	})

	prefs.focusMinutes.SetText("40")
	prefs.breakMinutes.SetText("10")
	prefs.label.SetText("  Reading ")
	prefs.idleAfter.SetText("abc")
	prefs.metricsAddr.SetText("127.0.0.1:9464")
	prefs.launch.SetChecked(true)
	prefs.exercise.SetSelected(phases.Builtin().Exercise(phases.Exercise478).Label)

	prefs.handleSave()

	assert.Equal(t, 40, saved.FocusMinutes)
	assert.Equal(t, 10, saved.BreakMinutes)
	assert.Equal(t, "Reading", saved.SessionLabel)
	assert.Equal(t, 5*time.Minute, saved.IdlePauseAfter)
	assert.Equal(t, "127.0.0.1:9464", saved.MetricsAddress)
	assert.True(t, saved.LaunchAtLogin)
	assert.Equal(t, string(phases.Exercise478), saved.Exercise)
}

func TestInvalidValuesKeepPrevious(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	prefs := New(app, storage.DefaultSettings(), nil, nil)
	prefs.focusMinutes.SetText("-5")
	prefs.label.SetText("   ")

	settings := prefs.collect()
	assert.Equal(t, 25, settings.FocusMinutes)
	assert.Equal(t, "Focus", settings.SessionLabel)
}
