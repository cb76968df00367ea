package phaseclock

import (
	"time"

	"calmtide/internal/core/model"
)

// Transition describes the outcome of a single Tick.
type Transition struct {
	Changed bool
	From    model.Phase
	To      model.Phase
	Index   int
	Wrapped bool
}

// Snapshot is a read-only copy of the clock state.
type Snapshot struct {
	Phase     model.Phase
	Index     int
	Elapsed   time.Duration
	Cycles    int
	Running   bool
	Remaining int
	Progress  float64
}

// Clock advances through a cyclic phase sequence.
// A Clock is not safe for concurrent use; Runner serializes access.
type Clock struct {
	sequence model.Sequence
	index    int
	elapsed  time.Duration
	cycles   int
	running  bool
}

// New creates a stopped clock positioned at the first phase.
// It panics if the sequence is empty or contains a non-positive duration.
func New(sequence model.Sequence) *Clock {
	clock := &Clock{}
	clock.Reset(sequence)
	return clock
}

// Tick advances elapsed time by delta and crosses at most one phase boundary.
// Overshoot beyond the boundary is discarded.
func (clock *Clock) Tick(delta time.Duration) Transition {
	if !clock.running || delta < 0 {
		return Transition{Index: clock.index}
	}

	clock.elapsed += delta
	current := clock.sequence[clock.index]
	if clock.elapsed < current.Duration {
		return Transition{Index: clock.index}
	}

	clock.index = (clock.index + 1) % len(clock.sequence)
	clock.elapsed = 0
	wrapped := clock.index == 0
	if wrapped {
		clock.cycles++
	}
	return Transition{
		Changed: true,
		From:    current,
		To:      clock.sequence[clock.index],
		Index:   clock.index,
		Wrapped: wrapped,
	}
}

// Pause stops the clock. Ticks are ignored until Resume.
func (clock *Clock) Pause() {
	clock.running = false
}

// Resume restarts the clock.
func (clock *Clock) Resume() {
	clock.running = true
}

// Running reports whether the clock accepts ticks.
func (clock *Clock) Running() bool {
	return clock.running
}

// Reset returns the clock to its constructed state, optionally swapping the sequence.
func (clock *Clock) Reset(sequence ...model.Sequence) {
	if len(sequence) > 0 {
		validate(sequence[0])
		clock.sequence = sequence[0].Clone()
	}
	clock.index = 0
	clock.elapsed = 0
	clock.cycles = 0
	clock.running = false
}

// Phase returns the active phase.
func (clock *Clock) Phase() model.Phase {
	return clock.sequence[clock.index]
}

// Index returns the active phase index.
func (clock *Clock) Index() int {
	return clock.index
}

// Elapsed returns time spent in the active phase.
func (clock *Clock) Elapsed() time.Duration {
	return clock.elapsed
}

// Cycles returns the number of completed cycles.
func (clock *Clock) Cycles() int {
	return clock.cycles
}

// Sequence returns a copy of the active sequence.
func (clock *Clock) Sequence() model.Sequence {
	return clock.sequence.Clone()
}

// RemainingInPhase returns whole seconds left in the active phase, rounded up and never negative.
func (clock *Clock) RemainingInPhase() int {
	remaining := clock.sequence[clock.index].Duration - clock.elapsed
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// ProgressFraction returns elapsed / duration for the active phase.
func (clock *Clock) ProgressFraction() float64 {
	return float64(clock.elapsed) / float64(clock.sequence[clock.index].Duration)
}

// Snapshot returns the current state.
func (clock *Clock) Snapshot() Snapshot {
	return Snapshot{
		Phase:     clock.Phase(),
		Index:     clock.index,
		Elapsed:   clock.elapsed,
		Cycles:    clock.cycles,
		Running:   clock.running,
		Remaining: clock.RemainingInPhase(),
		Progress:  clock.ProgressFraction(),
	}
}

func validate(sequence model.Sequence) {
	if len(sequence) == 0 {
		panic("phaseclock: empty sequence")
	}
	for _, phase := range sequence {
		if phase.Duration <= 0 {
			panic("phaseclock: phase " + phase.Name + " has non-positive duration")
		}
	}
}
