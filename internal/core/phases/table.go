package phases

import (
	"sort"
	"time"

	"calmtide/internal/core/model"
)

// ExerciseType identifies a breathing exercise.
type ExerciseType string

const (
	ExerciseBox      ExerciseType = "box"
	Exercise478      ExerciseType = "478"
	ExerciseCoherent ExerciseType = "coherent"
	ExerciseCalm     ExerciseType = "calm"

	DefaultExercise = ExerciseBox
)

// Exercise is a labelled phase sequence.
type Exercise struct {
	Type     ExerciseType
	Label    string
	Sequence model.Sequence
}

// Table maps exercise types to phase sequences.
type Table struct {
	exercises map[ExerciseType]Exercise
}

// Builtin returns the table of bundled exercises.
func Builtin() *Table {
	return &Table{exercises: map[ExerciseType]Exercise{
		ExerciseBox: {
			Type:  ExerciseBox,
			Label: "Box breathing",
			Sequence: model.Sequence{
				breatheIn(4 * time.Second),
				hold(4 * time.Second),
				breatheOut(4 * time.Second),
				hold(4 * time.Second),
			},
		},
		Exercise478: {
			Type:  Exercise478,
			Label: "4-7-8 relaxing breath",
			Sequence: model.Sequence{
				breatheIn(4 * time.Second),
				hold(7 * time.Second),
				breatheOut(8 * time.Second),
			},
		},
		ExerciseCoherent: {
			Type:  ExerciseCoherent,
			Label: "Coherent breathing",
			Sequence: model.Sequence{
				breatheIn(5500 * time.Millisecond),
				breatheOut(5500 * time.Millisecond),
			},
		},
		ExerciseCalm: {
			Type:  ExerciseCalm,
			Label: "Calm exhale",
			Sequence: model.Sequence{
				breatheIn(4 * time.Second),
				breatheOut(6 * time.Second),
			},
		},
	}}
}

// Lookup returns the sequence for an exercise type.
// Unknown types fall back to the default exercise.
func (table *Table) Lookup(exercise ExerciseType) model.Sequence {
	return table.Exercise(exercise).Sequence.Clone()
}

// Exercise returns the full exercise entry, falling back to the default.
func (table *Table) Exercise(exercise ExerciseType) Exercise {
	if entry, ok := table.exercises[exercise]; ok {
		return entry
	}
	if entry, ok := table.exercises[DefaultExercise]; ok {
		return entry
	}
	return Builtin().exercises[DefaultExercise]
}

// Has reports whether the table defines the exercise type.
func (table *Table) Has(exercise ExerciseType) bool {
	_, ok := table.exercises[exercise]
	return ok
}

// Types returns all exercise types, default first, the rest sorted.
func (table *Table) Types() []ExerciseType {
	types := make([]ExerciseType, 0, len(table.exercises))
	for exercise := range table.exercises {
		if exercise == DefaultExercise {
			continue
		}
		types = append(types, exercise)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return append([]ExerciseType{DefaultExercise}, types...)
}

// Exercises returns copies of all entries in Types order.
func (table *Table) Exercises() []Exercise {
	types := table.Types()
	exercises := make([]Exercise, 0, len(types))
	for _, exercise := range types {
		entry := table.Exercise(exercise)
		entry.Sequence = entry.Sequence.Clone()
		exercises = append(exercises, entry)
	}
	return exercises
}

func breatheIn(duration time.Duration) model.Phase {
	return model.Phase{
		Name:     "Breathe In",
		Duration: duration,
		Meta: model.PhaseMeta{
			Instruction: "Breathe in slowly through your nose",
			Motion:      model.MotionExpand,
			Color:       "#5FB7C9",
		},
	}
}

func hold(duration time.Duration) model.Phase {
	return model.Phase{
		Name:     "Hold",
		Duration: duration,
		Meta: model.PhaseMeta{
			Instruction: "Hold gently",
			Motion:      model.MotionHold,
			Color:       "#8E86D1",
		},
	}
}

func breatheOut(duration time.Duration) model.Phase {
	return model.Phase{
		Name:     "Breathe Out",
		Duration: duration,
		Meta: model.PhaseMeta{
			Instruction: "Breathe out through your mouth",
			Motion:      model.MotionContract,
			Color:       "#7BC48F",
		},
	}
}
