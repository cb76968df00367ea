package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"calmtide/internal/core/phases"
	"calmtide/internal/storage"
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  storage.Settings
	exercises []phases.Exercise
	onSave    func(storage.Settings)

	focusMinutes *widget.Entry
	breakMinutes *widget.Entry
	label        *widget.Entry
	exercise     *widget.Select
	idleCheck    *widget.Check
	idleAfter    *widget.Entry
	launch       *widget.Check
	opacity      *widget.Slider
	driver       *widget.Select
	dsn          *widget.Entry
	metricsAddr  *widget.Entry
	logLevel     *widget.Select
}

// New creates a preferences window. exercises feeds the default exercise selector.
func New(app fyne.App, settings storage.Settings, exercises []phases.Exercise, onSave func(storage.Settings)) *Window {
	window := app.NewWindow("Calmtide Settings")

	exerciseLabels := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		exerciseLabels = append(exerciseLabels, exercise.Label)
	}

	prefs := &Window{
		window:       window,
		exercises:    exercises,
		onSave:       onSave,
		focusMinutes: widget.NewEntry(),
		breakMinutes: widget.NewEntry(),
		label:        widget.NewEntry(),
		exercise:     widget.NewSelect(exerciseLabels, nil),
		idleCheck:    widget.NewCheck("Pause focus when idle", nil),
		idleAfter:    widget.NewEntry(),
		launch:       widget.NewCheck("Launch at login", nil),
		opacity:      widget.NewSlider(0.5, 1),
		driver:       widget.NewSelect([]string{storage.DriverSQLite, storage.DriverPostgres, storage.DriverMemory}, nil),
		dsn:          widget.NewEntry(),
		metricsAddr:  widget.NewEntry(),
		logLevel:     widget.NewSelect(logLevels, nil),
	}
	prefs.opacity.Step = 0.05
	prefs.dsn.SetPlaceHolder("default database file")
	prefs.metricsAddr.SetPlaceHolder("disabled, e.g. 127.0.0.1:9464")

	form := container.NewVBox(
		widget.NewLabelWithStyle("Focus", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Focus length"), prefs.focusMinutes, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Break length"), prefs.breakMinutes, widget.NewLabel("min")),
		container.NewBorder(nil, nil, widget.NewLabel("Session label"), nil, prefs.label),
		prefs.idleCheck,
		container.NewHBox(widget.NewLabel("Idle after"), prefs.idleAfter, widget.NewLabel("min")),
		widget.NewLabelWithStyle("Breathing", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Default exercise"), nil, prefs.exercise),
		widget.NewLabel("Window opacity"),
		prefs.opacity,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.launch,
		container.NewBorder(nil, nil, widget.NewLabel("Storage"), nil, prefs.driver),
		container.NewBorder(nil, nil, widget.NewLabel("Database"), nil, prefs.dsn),
		container.NewBorder(nil, nil, widget.NewLabel("Metrics address"), nil, prefs.metricsAddr),
		container.NewBorder(nil, nil, widget.NewLabel("Log level"), nil, prefs.logLevel),
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(form)))
	window.Resize(fyne.NewSize(460, 560))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings storage.Settings) {
	prefs.settings = settings
	prefs.focusMinutes.SetText(strconv.Itoa(settings.FocusMinutes))
	prefs.breakMinutes.SetText(strconv.Itoa(settings.BreakMinutes))
	prefs.label.SetText(settings.SessionLabel)
	prefs.idleCheck.SetChecked(settings.IdlePauseEnabled)
	prefs.idleAfter.SetText(fmt.Sprintf("%d", int(settings.IdlePauseAfter.Minutes())))
	prefs.launch.SetChecked(settings.LaunchAtLogin)
	prefs.opacity.SetValue(settings.BreathingOpacity)
	prefs.driver.SetSelected(settings.DatabaseDriver)
	prefs.dsn.SetText(settings.DatabaseDSN)
	prefs.metricsAddr.SetText(settings.MetricsAddress)
	prefs.logLevel.SetSelected(settings.LogLevel)

	for _, exercise := range prefs.exercises {
		if string(exercise.Type) == settings.Exercise {
			prefs.exercise.SetSelected(exercise.Label)
		}
	}
}

func (prefs *Window) handleSave() {
	prefs.settings = prefs.collect()
	if prefs.onSave != nil {
		prefs.onSave(prefs.settings)
	}
	prefs.window.Hide()
}

// collect reads the form, keeping the previous value for any invalid field.
func (prefs *Window) collect() storage.Settings {
	settings := prefs.settings

	if minutes, ok := parsePositiveInt(prefs.focusMinutes.Text); ok {
		settings.FocusMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.breakMinutes.Text); ok {
		settings.BreakMinutes = minutes
	}
	if label := strings.TrimSpace(prefs.label.Text); label != "" {
		settings.SessionLabel = label
	}
	if minutes, ok := parsePositiveInt(prefs.idleAfter.Text); ok {
		settings.IdlePauseAfter = time.Duration(minutes) * time.Minute
	}
	for _, exercise := range prefs.exercises {
		if exercise.Label == prefs.exercise.Selected {
			settings.Exercise = string(exercise.Type)
		}
	}
	if prefs.driver.Selected != "" {
		settings.DatabaseDriver = prefs.driver.Selected
	}
	if prefs.logLevel.Selected != "" {
		settings.LogLevel = prefs.logLevel.Selected
	}

	settings.IdlePauseEnabled = prefs.idleCheck.Checked
	settings.LaunchAtLogin = prefs.launch.Checked
	settings.BreathingOpacity = prefs.opacity.Value
	settings.DatabaseDSN = strings.TrimSpace(prefs.dsn.Text)
	settings.MetricsAddress = strings.TrimSpace(prefs.metricsAddr.Text)
	return settings
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
