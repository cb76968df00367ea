package tray

import (
	"fmt"

	"calmtide/internal/core/phases"
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowFocus   func()
	OnToggleFocus func()
	OnReset       func()
	OnBreathing   func(exercise phases.ExerciseType)
	OnPreferences func()
	OnQuit        func()
}

// Exercise is a breathing submenu entry.
type Exercise struct {
	Type  phases.ExerciseType
	Label string
}

// Manager handles system tray state. Its setters must run on the fyne goroutine.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	streakItem  *fyne.MenuItem
	breathing   *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, exercises []Exercise, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusLabel = "ready"
	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true

	manager.streakItem = fyne.NewMenuItem("Streak: 0 days", nil)
	manager.streakItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start focus", func() {
		if manager.callbacks.OnToggleFocus != nil {
			manager.callbacks.OnToggleFocus()
		}
	})

	items := make([]*fyne.MenuItem, 0, len(exercises))
	for _, exercise := range exercises {
		items = append(items, fyne.NewMenuItem(exercise.Label, func() {
			if manager.callbacks.OnBreathing != nil {
				manager.callbacks.OnBreathing(exercise.Type)
			}
		}))
	}
	manager.breathing = fyne.NewMenuItem("Breathing", nil)
	manager.breathing.ChildMenu = fyne.NewMenu("", items...)

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status line and the start/pause item.
func (manager *Manager) SetStatus(status string, running bool) {
	if status == manager.statusLabel && running == manager.running {
		return
	}
	manager.statusLabel = status
	manager.running = running
	if running {
		manager.toggleItem.Label = "Pause focus"
	} else {
		manager.toggleItem.Label = "Start focus"
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetStreak shows the current streak and points.
func (manager *Manager) SetStreak(days, points int) {
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	manager.streakItem.Label = fmt.Sprintf("Streak: %d %s, %d points", days, unit, points)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Calmtide",
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowFocus != nil {
				manager.callbacks.OnShowFocus()
			}
		}),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() {
			if manager.callbacks.OnReset != nil {
				manager.callbacks.OnReset()
			}
		}),
		fyne.NewMenuItemSeparator(),
		manager.breathing,
		manager.streakItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
