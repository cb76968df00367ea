package phases

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"calmtide/internal/core/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSequence indicates a custom exercise is empty or has a non-positive phase.
var ErrInvalidSequence = errors.New("invalid phase sequence")

type yamlTable struct {
	Exercises map[string]yamlExercise `yaml:"exercises"`
}

type yamlExercise struct {
	Label  string      `yaml:"label"`
	Phases []yamlPhase `yaml:"phases"`
}

type yamlPhase struct {
	Name            string  `yaml:"name"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Instruction     string  `yaml:"instruction"`
	Motion          string  `yaml:"motion"`
	Color           string  `yaml:"color"`
}

// LoadTable parses custom exercises and merges them over the built-ins.
func LoadTable(data []byte) (*Table, error) {
	table := Builtin()

	var fileData yamlTable
	if err := yaml.Unmarshal(data, &fileData); err != nil {
		return nil, fmt.Errorf("parse exercises yaml: %w", err)
	}

	for id, raw := range fileData.Exercises {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("exercise with empty id: %w", ErrInvalidSequence)
		}
		sequence, err := convertPhases(raw.Phases)
		if err != nil {
			return nil, fmt.Errorf("exercise %q: %w", id, err)
		}
		label := raw.Label
		if label == "" {
			label = id
		}
		table.exercises[ExerciseType(id)] = Exercise{
			Type:     ExerciseType(id),
			Label:    label,
			Sequence: sequence,
		}
	}

	return table, nil
}

// LoadTableFile reads custom exercises from path.
// A missing file yields the built-in table.
func LoadTableFile(path string) (*Table, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("read exercises file: %w", err)
	}
	return LoadTable(rawData)
}

func convertPhases(raw []yamlPhase) (model.Sequence, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no phases: %w", ErrInvalidSequence)
	}

	sequence := make(model.Sequence, 0, len(raw))
	for index, phase := range raw {
		duration := time.Duration(phase.DurationSeconds * float64(time.Second))
		if duration <= 0 {
			return nil, fmt.Errorf("phase %d %q has duration %v: %w", index, phase.Name, phase.DurationSeconds, ErrInvalidSequence)
		}
		motion, err := parseMotion(phase.Motion)
		if err != nil {
			return nil, fmt.Errorf("phase %d %q: %w", index, phase.Name, err)
		}
		name := phase.Name
		if name == "" {
			name = fmt.Sprintf("Phase %d", index+1)
		}
		sequence = append(sequence, model.Phase{
			Name:     name,
			Duration: duration,
			Meta: model.PhaseMeta{
				Instruction: phase.Instruction,
				Motion:      motion,
				Color:       phase.Color,
			},
		})
	}
	return sequence, nil
}

func parseMotion(value string) (model.Motion, error) {
	switch model.Motion(strings.ToLower(strings.TrimSpace(value))) {
	case "", model.MotionHold:
		return model.MotionHold, nil
	case model.MotionExpand:
		return model.MotionExpand, nil
	case model.MotionContract:
		return model.MotionContract, nil
	default:
		return "", fmt.Errorf("unknown motion %q: %w", value, ErrInvalidSequence)
	}
}
