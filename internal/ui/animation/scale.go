// Package animation computes the breathing circle size from the phase clock.
package animation

import "calmtide/internal/core/model"

const (
	MinScale float32 = 0.5
	MaxScale float32 = 1.0
)

// Scale returns the circle scale for a phase at progress in [0,1].
// Expand grows from MinScale to MaxScale, contract shrinks back, and hold keeps level.
func Scale(motion model.Motion, progress float64, level float32) float32 {
	eased := float32(ease(clamp(progress)))
	switch motion {
	case model.MotionExpand:
		return MinScale + (MaxScale-MinScale)*eased
	case model.MotionContract:
		return MaxScale - (MaxScale-MinScale)*eased
	default:
		if level < MinScale {
			return MinScale
		}
		if level > MaxScale {
			return MaxScale
		}
		return level
	}
}

// Tracker remembers the level reached by the last expand or contract phase.
type Tracker struct {
	level  float32
	motion model.Motion
	index  int
	seen   bool
}

// NewTracker starts at MinScale.
func NewTracker() *Tracker {
	return &Tracker{level: MinScale}
}

// Update returns the scale for the phase at index and progress.
func (tracker *Tracker) Update(index int, motion model.Motion, progress float64) float32 {
	if tracker.seen && index != tracker.index {
		tracker.level = endLevel(tracker.motion, tracker.level)
	}
	tracker.index = index
	tracker.motion = motion
	tracker.seen = true
	return Scale(motion, progress, tracker.level)
}

// Reset returns the tracker to MinScale.
func (tracker *Tracker) Reset() {
	*tracker = Tracker{level: MinScale}
}

func endLevel(motion model.Motion, level float32) float32 {
	switch motion {
	case model.MotionExpand:
		return MaxScale
	case model.MotionContract:
		return MinScale
	default:
		return level
	}
}

// ease is smoothstep.
func ease(value float64) float64 {
	return value * value * (3 - 2*value)
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
