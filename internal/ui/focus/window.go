// Package focus shows the focus/break timer window.
package focus

import (
	"image/color"
	"strconv"
	"strings"

	"calmtide/internal/core/model"
	"calmtide/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Controller is the part of the session controller the window drives.
type Controller interface {
	Start()
	Pause()
	Reset()
	Configure(session model.SessionConfig) bool
	Config() model.TimeKeeperConfig
	DisplayState() timekeeper.DisplayState
}

var (
	focusColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	breakColor = color.NRGBA{R: 123, G: 196, B: 143, A: 255}
)

// Window manages the focus timer UI.
type Window struct {
	window       fyne.Window
	keeper       Controller
	timeText     *canvas.Text
	phaseLabel   *widget.Label
	label        *widget.Entry
	focusMinutes *widget.Entry
	breakMinutes *widget.Entry
	toggle       *widget.Button
	apply        *widget.Button
	onConfigure  func(model.SessionConfig)
}

// New creates the focus window.
func New(app fyne.App, keeper Controller) *Window {
	window := app.NewWindow("Calmtide")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	focus := &Window{
		window:       window,
		keeper:       keeper,
		timeText:     canvas.NewText("00:00", focusColor),
		phaseLabel:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		label:        widget.NewEntry(),
		focusMinutes: widget.NewEntry(),
		breakMinutes: widget.NewEntry(),
	}
	focus.timeText.Alignment = fyne.TextAlignCenter
	focus.timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	focus.timeText.TextSize = 56
	focus.label.SetPlaceHolder("What are you working on?")

	focus.toggle = widget.NewButton("Start", focus.handleToggle)
	focus.apply = widget.NewButton("Apply", focus.handleApply)
	resetButton := widget.NewButton("Reset", keeper.Reset)

	settings := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Label"), nil, focus.label),
		container.NewHBox(
			widget.NewLabel("Focus"), focus.focusMinutes, widget.NewLabel("min"),
			layout.NewSpacer(),
			widget.NewLabel("Break"), focus.breakMinutes, widget.NewLabel("min"),
		),
		container.NewHBox(layout.NewSpacer(), focus.apply),
	)
	buttons := container.NewHBox(layout.NewSpacer(), focus.toggle, resetButton, layout.NewSpacer())

	window.SetContent(container.NewVBox(focus.phaseLabel, focus.timeText, buttons, widget.NewSeparator(), settings))
	window.Resize(fyne.NewSize(380, 320))
	window.SetCloseIntercept(window.Hide)

	focus.loadConfig(keeper.Config().Session)
	focus.Render(keeper.DisplayState())
	return focus
}

// SetOnConfigure registers a handler run after the user applies new session values.
func (focus *Window) SetOnConfigure(handler func(model.SessionConfig)) {
	focus.onConfigure = handler
}

// Show displays the window.
func (focus *Window) Show() {
	focus.window.Show()
	focus.window.RequestFocus()
}

// Reload refreshes the form from the controller configuration.
func (focus *Window) Reload() {
	focus.loadConfig(focus.keeper.Config().Session)
	focus.Render(focus.keeper.DisplayState())
}

// Watch renders controller events until the channel is closed.
func (focus *Window) Watch(events <-chan timekeeper.Event) {
	for event := range events {
		if event.Type == timekeeper.EventIdleError {
			continue
		}
		fyne.Do(func() {
			focus.Render(focus.keeper.DisplayState())
		})
	}
}

// Render updates widgets from a display snapshot.
func (focus *Window) Render(state timekeeper.DisplayState) {
	focus.timeText.Text = state.FormattedTime
	if state.IsBreak {
		focus.timeText.Color = breakColor
		focus.phaseLabel.SetText("Break")
	} else {
		focus.timeText.Color = focusColor
		focus.phaseLabel.SetText(state.Label)
	}
	focus.timeText.Refresh()

	if state.IsRunning {
		focus.toggle.SetText("Pause")
		focus.focusMinutes.Disable()
		focus.breakMinutes.Disable()
	} else {
		if state.State == timekeeper.StatePaused {
			focus.toggle.SetText("Resume")
		} else {
			focus.toggle.SetText("Start")
		}
		focus.focusMinutes.Enable()
		focus.breakMinutes.Enable()
	}
}

func (focus *Window) handleToggle() {
	if focus.keeper.DisplayState().IsRunning {
		focus.keeper.Pause()
		return
	}
	focus.keeper.Start()
}

func (focus *Window) handleApply() {
	session := focus.keeper.Config().Session
	if minutes, ok := parsePositiveInt(focus.focusMinutes.Text); ok {
		session.FocusDurationMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(focus.breakMinutes.Text); ok {
		session.BreakDurationMinutes = minutes
	}
	if label := strings.TrimSpace(focus.label.Text); label != "" {
		session.SessionLabel = label
	}

	focus.keeper.Configure(session)
	applied := focus.keeper.Config().Session
	focus.loadConfig(applied)
	focus.Render(focus.keeper.DisplayState())
	if focus.onConfigure != nil {
		focus.onConfigure(applied)
	}
}

func (focus *Window) loadConfig(session model.SessionConfig) {
	focus.label.SetText(session.SessionLabel)
	focus.focusMinutes.SetText(strconv.Itoa(session.FocusDurationMinutes))
	focus.breakMinutes.SetText(strconv.Itoa(session.BreakDurationMinutes))
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
