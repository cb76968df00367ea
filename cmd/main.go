package main

import (
	"context"
	"errors"
	"log"
	"path/filepath"

	"calmtide/internal/core/model"
	"calmtide/internal/core/phaseclock"
	"calmtide/internal/core/phases"
	"calmtide/internal/core/timekeeper"
	"calmtide/internal/metrics"
	"calmtide/internal/outbox"
	"calmtide/internal/platform"
	"calmtide/internal/report"
	"calmtide/internal/rewards"
	"calmtide/internal/storage"
	"calmtide/internal/ui/breathing"
	"calmtide/internal/ui/focus"
	"calmtide/internal/ui/preferences"
	"calmtide/internal/ui/tray"
	"calmtide/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/sirupsen/logrus"
)

const (
	appName           = "Calmtide"
	appID             = "com.calmtide.app"
	exercisesFileName = "exercises.yaml"
)

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(appName); activateErr != nil {
				log.Printf("activate running instance: %v", activateErr)
			}
		}
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	service := platform.NewService()
	configDir, err := service.ConfigDir(appName)
	if err != nil {
		log.Fatalf("config dir: %v", err)
	}

	settingsStore := storage.NewSettingsStore(storage.SettingsPath(configDir))
	settings, err := settingsStore.Load()
	logger := newLogger(settings.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("failed to load settings, using defaults")
	}

	table, err := phases.LoadTableFile(filepath.Join(settingsStore.Dir(), exercisesFileName))
	if err != nil {
		logger.WithError(err).Warn("failed to load custom exercises, using built-ins")
		table = phases.Builtin()
	}

	repo := openRepository(settings, settingsStore.Dir(), logger)
	recorder := metrics.New()
	box := outbox.New(outbox.Config{Logger: logger})
	box.SetOnChange(recorder.SetOutboxPending)

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconLogo))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error("system tray unsupported on this platform")
		return
	}

	notify := func(title, message string) {
		fyneApp.SendNotification(fyne.NewNotification(title, message))
	}

	reporter, err := report.New(report.Config{
		Repository: repo,
		Outbox:     box,
		Metrics:    recorder,
		Notifier:   report.NotifierFunc(notify),
		Logger:     logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create reporter")
	}
	if err := box.Start(reporter.Retry); err != nil {
		logger.WithError(err).Error("failed to schedule outbox retries")
	}

	keeper := timekeeper.New(settings.TimeKeeperConfig(), timekeeper.Config{})
	keeper.SetIdleChecker(platform.NewIdleProvider())
	keeper.SetOnFocusPhaseComplete(reporter.FocusCompleted)

	exercise := table.Exercise(phases.ExerciseType(settings.Exercise))
	runner := phaseclock.NewRunner(string(exercise.Type), table.Lookup(exercise.Type), phaseclock.Config{})
	runner.SetOnCycleComplete(reporter.CycleCompleted)

	ctx, cancel := context.WithCancel(context.Background())
	go keeper.Run(ctx)
	go runner.Run(ctx)

	if settings.MetricsAddress != "" {
		go func() {
			logger.WithField("address", settings.MetricsAddress).Info("serving metrics")
			if err := recorder.Serve(ctx, settings.MetricsAddress); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	focusWindow := focus.New(fyneApp, keeper)
	breathingWindow := breathing.New(fyneApp, table, runner, breathing.Config{
		Opacity:  settings.BreathingOpacity,
		Exercise: exercise.Type,
	})

	saveSettings := func(updated storage.Settings) {
		if err := settingsStore.Save(updated); err != nil {
			logger.WithError(err).Error("failed to save settings")
		}
	}

	var prefsWindow *preferences.Window
	prefsWindow = preferences.New(fyneApp, settings, table.Exercises(), func(updated storage.Settings) {
		previous := settings
		applied, accepted := applyTimerSettings(keeper, updated)
		settings = applied

		if !accepted && (updated.FocusMinutes != applied.FocusMinutes || updated.BreakMinutes != applied.BreakMinutes) {
			prefsWindow.UpdateSettings(settings)
			notify(appName, "Focus and break lengths can't change while the timer runs. Pause or reset it first.")
		}
		focusWindow.Reload()
		breathingWindow.SetOpacity(settings.BreathingOpacity)
		applyExercise(breathingWindow, previous, settings)
		setLogLevel(logger, settings.LogLevel)
		if previous.LaunchAtLogin != settings.LaunchAtLogin {
			if err := platform.SetLaunchAtLogin(service, appName, settings.LaunchAtLogin); err != nil {
				logger.WithError(err).Error("failed to update launch at login")
			}
		}
		if restartRequired(previous, settings) {
			notify(appName, "Restart Calmtide to apply storage and metrics changes.")
		}
		saveSettings(settings)
	})

	focusWindow.SetOnConfigure(func(session model.SessionConfig) {
		settings.FocusMinutes = session.FocusDurationMinutes
		settings.BreakMinutes = session.BreakDurationMinutes
		settings.SessionLabel = session.SessionLabel
		prefsWindow.UpdateSettings(settings)
		saveSettings(settings)
	})

	trayExercises := make([]tray.Exercise, 0, len(table.Types()))
	for _, entry := range table.Exercises() {
		trayExercises = append(trayExercises, tray.Exercise{Type: entry.Type, Label: entry.Label})
	}

	trayManager := tray.New(desktopApp, trayExercises, tray.Callbacks{
		OnShowFocus: focusWindow.Show,
		OnToggleFocus: func() {
			if keeper.IsRunning() {
				keeper.Pause()
				return
			}
			keeper.Start()
		},
		OnReset: keeper.Reset,
		OnBreathing: func(exercise phases.ExerciseType) {
			breathingWindow.SelectExercise(exercise)
			breathingWindow.Show()
		},
		OnPreferences: prefsWindow.Show,
		OnQuit:        fyneApp.Quit,
	})
	desktopApp.SetSystemTrayIcon(resources.MustIcon(resources.IconTrayPaused))

	reporter.SetOnRewards(func(summary rewards.Summary) {
		fyne.Do(func() {
			trayManager.SetStreak(summary.CurrentStreak, summary.Points)
		})
	})
	go func() {
		summary, err := reporter.Summary(ctx)
		if err != nil {
			logger.WithError(err).Warn("failed to load rewards")
			return
		}
		fyne.Do(func() {
			trayManager.SetStreak(summary.CurrentStreak, summary.Points)
		})
	}()

	guard.SetOnActivate(func() {
		fyne.Do(focusWindow.Show)
	})

	go focusWindow.Watch(keeper.Subscribe(16))
	go breathingWindow.Watch(runner.Subscribe(16))
	go watchSession(keeper.Subscribe(16), desktopApp, trayManager, notify, logger)

	fyneApp.Lifecycle().SetOnStopped(func() {
		cancel()
		box.Stop()
		reporter.Close()
		if err := repo.Close(); err != nil {
			logger.WithError(err).Warn("failed to close record store")
		}
	})

	focusWindow.Show()
	fyneApp.Run()
}

func watchSession(events <-chan timekeeper.Event, desktopApp desktop.App, trayManager *tray.Manager, notify func(title, message string), logger logrus.FieldLogger) {
	var lastIcon fyne.Resource
	for event := range events {
		switch event.Type {
		case timekeeper.EventFocusComplete:
			notify(appName, "Focus complete. Time for a break.")
		case timekeeper.EventIdlePause:
			notify(appName, "Paused while you were away.")
		case timekeeper.EventIdleError:
			logger.WithField("reason", event.Message).Warn("idle detection disabled")
			continue
		}

		icon := trayIcon(event)
		iconChanged := icon != lastIcon
		lastIcon = icon
		fyne.Do(func() {
			trayManager.SetStatus(statusText(event), event.State == timekeeper.StateRunning)
			if iconChanged {
				desktopApp.SetSystemTrayIcon(icon)
			}
		})
	}
}

func statusText(event timekeeper.Event) string {
	phase := "focus"
	if event.IsBreak {
		phase = "break"
	}
	switch event.State {
	case timekeeper.StateIdle:
		return "ready"
	case timekeeper.StatePaused:
		return phase + " paused at " + timekeeper.FormatTime(event.TimeLeft)
	default:
		return phase + " " + timekeeper.FormatTime(event.TimeLeft)
	}
}

func trayIcon(event timekeeper.Event) fyne.Resource {
	switch {
	case event.State != timekeeper.StateRunning:
		return resources.MustIcon(resources.IconTrayPaused)
	case event.IsBreak:
		return resources.MustIcon(resources.IconTrayBreak)
	default:
		return resources.MustIcon(resources.IconTrayActive)
	}
}
