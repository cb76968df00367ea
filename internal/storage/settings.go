package storage

import (
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/core/phases"
)

// Settings defines editable user preferences.
type Settings struct {
	FocusMinutes int
	BreakMinutes int
	SessionLabel string
	Exercise     string

	IdlePauseEnabled bool
	IdlePauseAfter   time.Duration
	LaunchAtLogin    bool
	BreathingOpacity float64

	DatabaseDriver string
	DatabaseDSN    string
	MetricsAddress string
	LogLevel       string
}

// DefaultSettings returns default settings for calmtide.
func DefaultSettings() Settings {
	session := model.DefaultSessionConfig()
	return Settings{
		FocusMinutes:     session.FocusDurationMinutes,
		BreakMinutes:     session.BreakDurationMinutes,
		SessionLabel:     session.SessionLabel,
		Exercise:         string(phases.DefaultExercise),
		IdlePauseEnabled: true,
		IdlePauseAfter:   5 * time.Minute,
		LaunchAtLogin:    false,
		BreathingOpacity: 0.9,
		DatabaseDriver:   DriverSQLite,
		LogLevel:         "info",
	}
}

// SessionConfig converts settings to the focus/break configuration.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		FocusDurationMinutes: settings.FocusMinutes,
		BreakDurationMinutes: settings.BreakMinutes,
		SessionLabel:         settings.SessionLabel,
	}
}

// TimeKeeperConfig converts settings to TimeKeeperConfig.
func (settings Settings) TimeKeeperConfig() model.TimeKeeperConfig {
	return model.TimeKeeperConfig{
		Session:           settings.SessionConfig(),
		IdlePauseEnabled:  settings.IdlePauseEnabled,
		IdlePauseAfter:    settings.IdlePauseAfter,
		IdleCheckInterval: 5 * time.Second,
	}
}
