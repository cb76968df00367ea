// Package schedule drives fixed-interval ticks from a single-shot timer
// that is re-armed only after the previous tick has been applied.
package schedule

import (
	"context"
	"time"
)

// Loop schedules ticks while Running reports true.
type Loop struct {
	interval time.Duration
	running  func() bool
	tick     func(time.Time)
	wake     chan struct{}
}

// New creates a loop. Interval defaults to one second.
func New(interval time.Duration, running func() bool, tick func(time.Time)) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	return &Loop{
		interval: interval,
		running:  running,
		tick:     tick,
		wake:     make(chan struct{}, 1),
	}
}

// Interval returns the tick interval.
func (loop *Loop) Interval() time.Duration {
	return loop.interval
}

// Wake asks the loop to re-evaluate Running, arming or disarming the timer.
func (loop *Loop) Wake() {
	select {
	case loop.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. The timer is always stopped on return.
func (loop *Loop) Run(ctx context.Context) {
	timer := time.NewTimer(loop.interval)
	stopTimer(timer)
	armed := false
	defer stopTimer(timer)

	for {
		running := loop.running()
		switch {
		case running && !armed:
			timer.Reset(loop.interval)
			armed = true
		case !running && armed:
			stopTimer(timer)
			armed = false
		}

		select {
		case <-ctx.Done():
			return
		case <-loop.wake:
		case tickTime := <-timer.C:
			armed = false
			loop.tick(tickTime)
		}
	}
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
