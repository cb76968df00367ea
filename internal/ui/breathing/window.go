// Package breathing shows the guided breathing exercise driven by a phase clock runner.
package breathing

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"calmtide/internal/core/model"
	"calmtide/internal/core/phaseclock"
	"calmtide/internal/core/phases"
	"calmtide/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines breathing window visuals.
type Config struct {
	Opacity  float64
	Exercise phases.ExerciseType
}

// Controller is the part of the phase clock runner the window drives.
type Controller interface {
	Start()
	Pause()
	Reset()
	Running() bool
	SetSequence(exercise string, sequence model.Sequence)
}

// Window manages the breathing UI.
type Window struct {
	window      fyne.Window
	table       *phases.Table
	runner      Controller
	config      Config
	exercises   []phases.Exercise
	tracker     *animation.Tracker
	background  *canvas.Rectangle
	circle      *canvas.Circle
	stage       *fyne.Container
	stageShape  *circleLayout
	instruction *canvas.Text
	remaining   *canvas.Text
	cycles      *widget.Label
	selector    *widget.Select
	toggle      *widget.Button
}

var defaultCircleColor = color.NRGBA{R: 94, G: 169, B: 190, A: 255}

// New creates a breathing window bound to runner.
func New(app fyne.App, table *phases.Table, runner Controller, config Config) *Window {
	window := app.NewWindow("Calmtide Breathing")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	breathing := &Window{
		window:     window,
		table:      table,
		runner:     runner,
		config:     config,
		exercises:  table.Exercises(),
		tracker:    animation.NewTracker(),
		background: canvas.NewRectangle(color.NRGBA{R: 16, G: 24, B: 32, A: opacityToAlpha(config.Opacity)}),
		circle:     canvas.NewCircle(defaultCircleColor),
		stageShape: &circleLayout{scale: animation.MinScale},
	}

	breathing.instruction = canvas.NewText("", color.White)
	breathing.instruction.Alignment = fyne.TextAlignCenter
	breathing.instruction.TextStyle = fyne.TextStyle{Bold: true}
	breathing.instruction.TextSize = 22

	breathing.remaining = canvas.NewText("", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	breathing.remaining.Alignment = fyne.TextAlignCenter
	breathing.remaining.TextSize = 18

	breathing.cycles = widget.NewLabel("Cycles: 0")

	labels := make([]string, 0, len(breathing.exercises))
	for _, exercise := range breathing.exercises {
		labels = append(labels, exercise.Label)
	}
	breathing.selector = widget.NewSelect(labels, breathing.handleSelect)

	breathing.toggle = widget.NewButton("Start", breathing.handleToggle)
	resetButton := widget.NewButton("Reset", breathing.handleReset)

	breathing.stage = container.New(breathing.stageShape, breathing.circle)
	labelsBox := container.NewVBox(breathing.instruction, breathing.remaining)
	controls := container.NewHBox(breathing.selector, layout.NewSpacer(), breathing.cycles, breathing.toggle, resetButton)
	content := container.NewBorder(nil, controls, nil, nil, container.NewStack(breathing.stage, container.NewCenter(labelsBox)))

	window.SetContent(container.NewStack(breathing.background, content))
	window.Resize(fyne.NewSize(420, 480))
	window.SetCloseIntercept(func() {
		breathing.runner.Pause()
		window.Hide()
	})

	breathing.SelectExercise(config.Exercise)
	return breathing
}

// Show displays the window and applies native opacity where supported.
func (breathing *Window) Show() {
	breathing.window.Show()
	breathing.window.RequestFocus()
	applyNativeOpacity(breathing.window, breathing.config.Opacity)
}

// SelectExercise switches the runner to exercise and rewinds the animation.
func (breathing *Window) SelectExercise(exercise phases.ExerciseType) {
	entry := breathing.table.Exercise(exercise)
	breathing.tracker.Reset()
	breathing.runner.SetSequence(string(entry.Type), breathing.table.Lookup(entry.Type))

	if breathing.selector.Selected != entry.Label {
		breathing.selector.OnChanged = nil
		breathing.selector.SetSelected(entry.Label)
		breathing.selector.OnChanged = breathing.handleSelect
	}
	breathing.render(phaseclock.Event{Phase: breathing.table.Lookup(entry.Type)[0], Remaining: firstPhaseSeconds(entry)})
}

// SetOpacity updates the background alpha.
func (breathing *Window) SetOpacity(opacity float64) {
	breathing.config.Opacity = opacity
	breathing.background.FillColor = color.NRGBA{R: 16, G: 24, B: 32, A: opacityToAlpha(opacity)}
	breathing.background.Refresh()
	applyNativeOpacity(breathing.window, opacity)
}

// Watch renders runner events until the channel is closed.
func (breathing *Window) Watch(events <-chan phaseclock.Event) {
	for event := range events {
		fyne.Do(func() {
			breathing.render(event)
		})
	}
}

func (breathing *Window) render(event phaseclock.Event) {
	instruction := event.Phase.Meta.Instruction
	if instruction == "" {
		instruction = event.Phase.Name
	}
	breathing.instruction.Text = instruction
	breathing.instruction.Refresh()

	breathing.remaining.Text = strconv.Itoa(event.Remaining)
	breathing.remaining.Refresh()

	breathing.cycles.SetText(fmt.Sprintf("Cycles: %d", event.Cycles))

	if event.Running {
		breathing.toggle.SetText("Pause")
	} else {
		breathing.toggle.SetText("Start")
	}

	breathing.circle.FillColor = parseHexColor(event.Phase.Meta.Color, defaultCircleColor)
	breathing.stageShape.scale = breathing.tracker.Update(event.Index, event.Phase.Meta.Motion, event.Progress)
	breathing.stage.Refresh()
}

func (breathing *Window) handleSelect(label string) {
	for _, exercise := range breathing.exercises {
		if exercise.Label == label {
			breathing.SelectExercise(exercise.Type)
			return
		}
	}
}

func (breathing *Window) handleToggle() {
	if breathing.runner.Running() {
		breathing.runner.Pause()
		return
	}
	breathing.runner.Start()
}

func (breathing *Window) handleReset() {
	breathing.tracker.Reset()
	breathing.runner.Reset()
}

func firstPhaseSeconds(exercise phases.Exercise) int {
	if len(exercise.Sequence) == 0 {
		return 0
	}
	duration := exercise.Sequence[0].Duration
	seconds := int(duration.Seconds())
	if float64(seconds) < duration.Seconds() {
		seconds++
	}
	return seconds
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity*255 + 0.5)
}

// parseHexColor accepts "#rrggbb" and returns fallback for anything else.
func parseHexColor(value string, fallback color.NRGBA) color.NRGBA {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return fallback
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(parsed >> 16), G: uint8(parsed >> 8), B: uint8(parsed), A: 255}
}

// circleLayout centers a square object whose side follows scale.
type circleLayout struct {
	scale float32
}

func (shape *circleLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	side = side * 0.9 * shape.scale
	for _, object := range objects {
		object.Resize(fyne.NewSize(side, side))
		object.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	}
}

func (shape *circleLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(240, 240)
}
