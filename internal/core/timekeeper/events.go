package timekeeper

import (
	"time"

	"calmtide/internal/core/model"
)

// State represents the controller mode.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventProgress      EventType = "progress"
	EventFocusComplete EventType = "focus_complete"
	EventIdlePause     EventType = "idle_pause"
	EventIdleError     EventType = "idle_error"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type     EventType
	State    State
	IsBreak  bool
	TimeLeft int
	Progress float64
	Message  string
	Record   *model.CompletedSessionRecord
	At       time.Time
}

// DisplayState is a read-only snapshot for rendering.
type DisplayState struct {
	State         State
	TimeLeft      int
	IsBreak       bool
	IsRunning     bool
	FormattedTime string
	Label         string
}
