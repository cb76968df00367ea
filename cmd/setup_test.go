package main

import (
	"path/filepath"
	"testing"
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/core/phases"
	"calmtide/internal/core/timekeeper"
	"calmtide/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, newLogger("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, newLogger("loud").GetLevel())
}

func TestRepositoryDSN(t *testing.T) {
	settings := storage.DefaultSettings()
	assert.Equal(t, filepath.Join("/cfg", "calmtide.db"), repositoryDSN(settings, "/cfg"))

	settings.DatabaseDSN = "/data/custom.db"
	assert.Equal(t, "/data/custom.db", repositoryDSN(settings, "/cfg"))

	settings = storage.DefaultSettings()
	settings.DatabaseDriver = storage.DriverPostgres
	assert.Empty(t, repositoryDSN(settings, "/cfg"))
}

func TestOpenRepositoryFallsBackToMemory(t *testing.T) {
	logger, hook := test.NewNullLogger()
	settings := storage.DefaultSettings()
	settings.DatabaseDriver = "cassandra"

	repo := openRepository(settings, t.TempDir(), logger)
	defer repo.Close()

	assert.IsType(t, &storage.MemoryRepository{}, repo)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestOpenRepositorySQLite(t *testing.T) {
	logger, _ := test.NewNullLogger()

	repo := openRepository(storage.DefaultSettings(), t.TempDir(), logger)
	defer repo.Close()

	assert.IsType(t, &storage.SQLiteRepository{}, repo)
}

func TestRestartRequired(t *testing.T) {
	previous := storage.DefaultSettings()
	updated := previous
	updated.FocusMinutes = 50
	assert.False(t, restartRequired(previous, updated))

	updated.MetricsAddress = "127.0.0.1:9464"
	assert.True(t, restartRequired(previous, updated))
}

func TestApplyTimerSettingsWhileIdle(t *testing.T) {
	settings := storage.DefaultSettings()
	keeper := timekeeper.New(settings.TimeKeeperConfig(), timekeeper.Config{})

	updated := settings
	updated.FocusMinutes = 50
	updated.BreakMinutes = 10
	applied, accepted := applyTimerSettings(keeper, updated)

	assert.True(t, accepted)
	assert.Equal(t, 50, applied.FocusMinutes)
	assert.Equal(t, 10, applied.BreakMinutes)
	assert.Equal(t, 3000, keeper.DisplayState().TimeLeft)
}

func TestApplyTimerSettingsWhileRunningKeepsActiveLengths(t *testing.T) {
	settings := storage.DefaultSettings()
	settings.FocusMinutes = 25
	settings.BreakMinutes = 5
	keeper := timekeeper.New(settings.TimeKeeperConfig(), timekeeper.Config{})
	keeper.Start()

	updated := settings
	updated.FocusMinutes = 50
	updated.BreakMinutes = 10
	updated.SessionLabel = "Writing"
	updated.IdlePauseAfter = 10 * time.Minute
	applied, accepted := applyTimerSettings(keeper, updated)

	assert.False(t, accepted)
	assert.Equal(t, 25, applied.FocusMinutes)
	assert.Equal(t, 5, applied.BreakMinutes)
	assert.Equal(t, "Writing", applied.SessionLabel)
	assert.Equal(t, 10*time.Minute, applied.IdlePauseAfter)

	keeper.Pause()
	keeper.Reset()
	assert.Equal(t, model.SessionConfig{
		FocusDurationMinutes: applied.FocusMinutes,
		BreakDurationMinutes: applied.BreakMinutes,
		SessionLabel:         applied.SessionLabel,
	}, keeper.Config().Session)
	assert.Equal(t, 1500, keeper.DisplayState().TimeLeft)
}

type recordingSelector struct {
	selected []phases.ExerciseType
}

func (selector *recordingSelector) SelectExercise(exercise phases.ExerciseType) {
	selector.selected = append(selector.selected, exercise)
}

func TestApplyExercise(t *testing.T) {
	selector := &recordingSelector{}
	previous := storage.DefaultSettings()

	assert.False(t, applyExercise(selector, previous, previous))
	assert.Empty(t, selector.selected)

	updated := previous
	updated.Exercise = string(phases.Exercise478)
	assert.True(t, applyExercise(selector, previous, updated))
	assert.Equal(t, []phases.ExerciseType{phases.Exercise478}, selector.selected)
}
