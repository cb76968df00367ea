package phaseclock

import (
	"context"
	"sync"
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/core/schedule"
)

// Config contains runtime options for Runner.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Runner drives a Clock from a fixed-interval schedule and publishes events.
type Runner struct {
	mu       sync.Mutex
	clock    *Clock
	exercise string
	options  Config
	loop     *schedule.Loop
	events   []chan Event
	onCycle  func(model.CycleRecord)
}

// NewRunner creates a stopped runner for the given exercise.
func NewRunner(exercise string, sequence model.Sequence, options Config) *Runner {
	if options.TickInterval <= 0 {
		options.TickInterval = 100 * time.Millisecond
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	runner := &Runner{
		clock:    New(sequence),
		exercise: exercise,
		options:  options,
	}
	runner.loop = schedule.New(options.TickInterval, runner.Running, runner.tick)
	return runner
}

// Subscribe registers a new observer channel.
func (runner *Runner) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	runner.mu.Lock()
	runner.events = append(runner.events, ch)
	runner.mu.Unlock()
	return ch
}

// SetOnCycleComplete registers the callback invoked when a cycle wraps.
func (runner *Runner) SetOnCycleComplete(handler func(model.CycleRecord)) {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	runner.onCycle = handler
}

// Run drives ticks until ctx is cancelled, then closes observers.
func (runner *Runner) Run(ctx context.Context) {
	runner.loop.Run(ctx)

	runner.mu.Lock()
	runner.clock.Pause()
	events := runner.events
	runner.events = nil
	runner.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Start resumes the exercise.
func (runner *Runner) Start() {
	runner.mu.Lock()
	if runner.clock.Running() {
		runner.mu.Unlock()
		return
	}
	runner.clock.Resume()
	runner.emitLocked(runner.eventLocked(EventStateChange, runner.options.Now()))
	runner.mu.Unlock()
	runner.loop.Wake()
}

// Pause freezes the exercise.
func (runner *Runner) Pause() {
	runner.mu.Lock()
	if !runner.clock.Running() {
		runner.mu.Unlock()
		return
	}
	runner.clock.Pause()
	runner.emitLocked(runner.eventLocked(EventStateChange, runner.options.Now()))
	runner.mu.Unlock()
	runner.loop.Wake()
}

// Reset stops the exercise and rewinds to the first phase.
func (runner *Runner) Reset() {
	runner.mu.Lock()
	runner.clock.Reset()
	runner.emitLocked(runner.eventLocked(EventStateChange, runner.options.Now()))
	runner.mu.Unlock()
	runner.loop.Wake()
}

// SetSequence switches exercise and resets the clock.
func (runner *Runner) SetSequence(exercise string, sequence model.Sequence) {
	runner.mu.Lock()
	runner.exercise = exercise
	runner.clock.Reset(sequence)
	runner.emitLocked(runner.eventLocked(EventStateChange, runner.options.Now()))
	runner.mu.Unlock()
	runner.loop.Wake()
}

// Running reports whether the exercise is advancing.
func (runner *Runner) Running() bool {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	return runner.clock.Running()
}

// Exercise returns the active exercise id.
func (runner *Runner) Exercise() string {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	return runner.exercise
}

// Snapshot returns the current clock state.
func (runner *Runner) Snapshot() Snapshot {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	return runner.clock.Snapshot()
}

func (runner *Runner) tick(time.Time) {
	runner.advance(runner.options.TickInterval)
}

func (runner *Runner) advance(delta time.Duration) {
	runner.mu.Lock()
	if !runner.clock.Running() {
		runner.mu.Unlock()
		return
	}

	now := runner.options.Now()
	transition := runner.clock.Tick(delta)
	if !transition.Changed {
		runner.emitLocked(runner.eventLocked(EventProgress, now))
		runner.mu.Unlock()
		return
	}

	runner.emitLocked(runner.eventLocked(EventPhaseChange, now))
	if !transition.Wrapped {
		runner.mu.Unlock()
		return
	}

	runner.emitLocked(runner.eventLocked(EventCycleComplete, now))
	record := model.CycleRecord{
		Exercise:    runner.exercise,
		Cycle:       runner.clock.Cycles(),
		Duration:    runner.clock.sequence.Total(),
		CompletedAt: now,
	}
	handler := runner.onCycle
	runner.mu.Unlock()

	if handler != nil {
		handler(record)
	}
}

func (runner *Runner) eventLocked(eventType EventType, now time.Time) Event {
	return Event{
		Type:      eventType,
		Exercise:  runner.exercise,
		Phase:     runner.clock.Phase(),
		Index:     runner.clock.Index(),
		Remaining: runner.clock.RemainingInPhase(),
		Progress:  runner.clock.ProgressFraction(),
		Cycles:    runner.clock.Cycles(),
		Running:   runner.clock.Running(),
		At:        now,
	}
}

func (runner *Runner) emitLocked(event Event) {
	for _, ch := range runner.events {
		select {
		case ch <- event:
		default:
		}
	}
}
