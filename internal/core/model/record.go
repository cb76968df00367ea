package model

import "time"

// CompletedSessionRecord is produced each time a focus phase finishes.
type CompletedSessionRecord struct {
	ID              string
	Label           string
	DurationMinutes int
	CompletedAt     time.Time
}

// CycleRecord is produced each time a breathing exercise completes a full cycle.
type CycleRecord struct {
	ID          string
	Exercise    string
	Cycle       int
	Duration    time.Duration
	CompletedAt time.Time
}
