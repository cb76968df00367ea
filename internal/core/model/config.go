package model

import "time"

// SessionConfig defines the focus/break alternation.
type SessionConfig struct {
	FocusDurationMinutes int
	BreakDurationMinutes int
	SessionLabel         string
}

// DefaultSessionConfig returns a classic 25/5 focus cycle.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FocusDurationMinutes: 25,
		BreakDurationMinutes: 5,
		SessionLabel:         "Focus",
	}
}

// FocusDuration returns the configured focus phase length.
func (config SessionConfig) FocusDuration() time.Duration {
	return time.Duration(config.FocusDurationMinutes) * time.Minute
}

// BreakDuration returns the configured break phase length.
func (config SessionConfig) BreakDuration() time.Duration {
	return time.Duration(config.BreakDurationMinutes) * time.Minute
}

// TimeKeeperConfig contains runtime settings for the session controller.
type TimeKeeperConfig struct {
	Session SessionConfig

	IdlePauseEnabled  bool
	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}
