package main

import (
	"os"
	"path/filepath"

	"calmtide/internal/core/phases"
	"calmtide/internal/core/timekeeper"
	"calmtide/internal/storage"

	"github.com/sirupsen/logrus"
)

const databaseFileName = "calmtide.db"

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	setLogLevel(logger, level)
	return logger
}

func setLogLevel(logger *logrus.Logger, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// repositoryDSN fills in the default SQLite file when no DSN is configured.
func repositoryDSN(settings storage.Settings, configDir string) string {
	if settings.DatabaseDSN != "" {
		return settings.DatabaseDSN
	}
	if settings.DatabaseDriver == storage.DriverSQLite || settings.DatabaseDriver == "" {
		return filepath.Join(configDir, databaseFileName)
	}
	return ""
}

// openRepository opens the configured store and falls back to memory so the timer keeps working.
func openRepository(settings storage.Settings, configDir string, logger logrus.FieldLogger) storage.Repository {
	repo, err := storage.Open(settings.DatabaseDriver, repositoryDSN(settings, configDir))
	if err != nil {
		logger.WithError(err).WithField("driver", settings.DatabaseDriver).
			Error("failed to open record store, keeping records in memory")
		return storage.NewMemory()
	}
	return repo
}

// restartRequired reports whether a settings change only applies after restart.
func restartRequired(previous, updated storage.Settings) bool {
	return previous.DatabaseDriver != updated.DatabaseDriver ||
		previous.DatabaseDSN != updated.DatabaseDSN ||
		previous.MetricsAddress != updated.MetricsAddress
}

// applyTimerSettings pushes updated into keeper and returns the settings the
// keeper actually runs with. Durations are kept at their active values when the
// keeper rejects them because a session is running.
func applyTimerSettings(keeper *timekeeper.TimeKeeper, updated storage.Settings) (storage.Settings, bool) {
	accepted := keeper.UpdateConfig(updated.TimeKeeperConfig())
	active := keeper.Config().Session
	updated.FocusMinutes = active.FocusDurationMinutes
	updated.BreakMinutes = active.BreakDurationMinutes
	updated.SessionLabel = active.SessionLabel
	return updated, accepted
}

type exerciseSelector interface {
	SelectExercise(exercise phases.ExerciseType)
}

// applyExercise switches selector when the default exercise changed.
func applyExercise(selector exerciseSelector, previous, updated storage.Settings) bool {
	if previous.Exercise == updated.Exercise {
		return false
	}
	selector.SelectExercise(phases.ExerciseType(updated.Exercise))
	return true
}
