package tray

import (
	"strings"
	"testing"

	"calmtide/internal/core/phases"
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDesktop struct {
	desktop.App
	menu    *fyne.Menu
	updates int
}

func (app *fakeDesktop) SetSystemTrayMenu(menu *fyne.Menu) {
	app.menu = menu
	app.updates++
}

func findItem(t *testing.T, menu *fyne.Menu, prefix string) *fyne.MenuItem {
	t.Helper()
	for _, item := range menu.Items {
		if strings.HasPrefix(item.Label, prefix) {
			return item
		}
	}
	t.Fatalf("menu item %q not found", prefix)
	return nil
}

func TestMenuActions(t *testing.T) {
	app := &fakeDesktop{}
	toggled := 0
	var picked phases.ExerciseType

	New(app, []Exercise{
		{Type: phases.ExerciseBox, Label: "Box"},
		{Type: phases.Exercise478, Label: "4-7-8"},
	}, Callbacks{
		OnToggleFocus: func() { toggled++ },
		OnBreathing:   func(exercise phases.ExerciseType) { picked = exercise },
	})
	require.NotNil(t, app.menu)

	findItem(t, app.menu, "Start focus").Action()
	assert.Equal(t, 1, toggled)

	breathing := findItem(t, app.menu, "Breathing")
	require.Len(t, breathing.ChildMenu.Items, 2)
	breathing.ChildMenu.Items[1].Action()
	assert.Equal(t, phases.Exercise478, picked)

	findItem(t, app.menu, "Quit").Action()
}

func TestSetStatusSkipsUnchangedUpdates(t *testing.T) {
	app := &fakeDesktop{}
	manager := New(app, nil, Callbacks{})
	before := app.updates

	manager.SetStatus("focus 24:59", true)
	manager.SetStatus("focus 24:59", true)

	assert.Equal(t, before+1, app.updates)
	assert.Equal(t, "Status: focus 24:59", findItem(t, app.menu, "Status").Label)
	assert.Equal(t, "Pause focus", findItem(t, app.menu, "Pause").Label)
}

func TestSetStreak(t *testing.T) {
	app := &fakeDesktop{}
	manager := New(app, nil, Callbacks{})

	manager.SetStreak(1, 35)
	assert.Equal(t, "Streak: 1 day, 35 points", findItem(t, app.menu, "Streak").Label)

	manager.SetStreak(4, 200)
	assert.Equal(t, "Streak: 4 days, 200 points", findItem(t, app.menu, "Streak").Label)
}
