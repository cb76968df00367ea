package phaseclock

import (
	"time"

	"calmtide/internal/core/model"
)

// EventType defines the type of Runner event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventPhaseChange   EventType = "phase_change"
	EventProgress      EventType = "progress"
	EventCycleComplete EventType = "cycle_complete"
)

// Event represents a Runner update for observers.
type Event struct {
	Type      EventType
	Exercise  string
	Phase     model.Phase
	Index     int
	Remaining int
	Progress  float64
	Cycles    int
	Running   bool
	At        time.Time
}
