package model

import "time"

// Motion describes how a breathing visual moves during a phase.
type Motion string

const (
	MotionExpand   Motion = "expand"
	MotionHold     Motion = "hold"
	MotionContract Motion = "contract"
)

// PhaseMeta carries display attributes. The clock never inspects it.
type PhaseMeta struct {
	Instruction string
	Motion      Motion
	Color       string
}

// Phase is one named, fixed-duration segment of an exercise or session.
type Phase struct {
	Name     string
	Duration time.Duration
	Meta     PhaseMeta
}

// Sequence is an ordered, cyclic list of phases.
type Sequence []Phase

// Total returns the duration of one full cycle.
func (sequence Sequence) Total() time.Duration {
	var total time.Duration
	for _, phase := range sequence {
		total += phase.Duration
	}
	return total
}

// Clone returns an independent copy of the sequence.
func (sequence Sequence) Clone() Sequence {
	return append(Sequence(nil), sequence...)
}
