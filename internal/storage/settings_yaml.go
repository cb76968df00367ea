package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusMinutes       int     `yaml:"focus_minutes"`
	BreakMinutes       int     `yaml:"break_minutes"`
	SessionLabel       string  `yaml:"session_label"`
	Exercise           string  `yaml:"exercise"`
	IdlePauseEnabled   bool    `yaml:"idle_pause_enabled"`
	IdlePauseAfterMins int     `yaml:"idle_pause_after_minutes"`
	LaunchAtLogin      bool    `yaml:"launch_at_login"`
	BreathingOpacity   float64 `yaml:"breathing_opacity"`
	DatabaseDriver     string  `yaml:"database_driver"`
	DatabaseDSN        string  `yaml:"database_dsn"`
	MetricsAddress     string  `yaml:"metrics_address"`
	LogLevel           string  `yaml:"log_level"`
}

// SettingsStore loads and saves preferences as YAML, caching the last known value.
type SettingsStore struct {
	mu     sync.Mutex
	path   string
	cached *Settings
}

// NewSettingsStore creates a store backed by the file at path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// SettingsPath returns the settings file location inside configDir.
func SettingsPath(configDir string) string {
	return filepath.Join(configDir, settingsFileName)
}

// Path returns the settings file path.
func (store *SettingsStore) Path() string {
	return store.path
}

// Dir returns the directory holding the settings file.
func (store *SettingsStore) Dir() string {
	return filepath.Dir(store.path)
}

// Load returns the cached settings, reading the file on first use.
// If the file does not exist, default settings are returned.
func (store *SettingsStore) Load() (Settings, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.cached != nil {
		return *store.cached, nil
	}

	settings := DefaultSettings()
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			store.cached = &settings
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	store.cached = &settings
	return settings, nil
}

// Save writes settings to disk and refreshes the cache.
func (store *SettingsStore) Save(settings Settings) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		FocusMinutes:       settings.FocusMinutes,
		BreakMinutes:       settings.BreakMinutes,
		SessionLabel:       settings.SessionLabel,
		Exercise:           settings.Exercise,
		IdlePauseEnabled:   settings.IdlePauseEnabled,
		IdlePauseAfterMins: int(settings.IdlePauseAfter / time.Minute),
		LaunchAtLogin:      settings.LaunchAtLogin,
		BreathingOpacity:   settings.BreathingOpacity,
		DatabaseDriver:     settings.DatabaseDriver,
		DatabaseDSN:        settings.DatabaseDSN,
		MetricsAddress:     settings.MetricsAddress,
		LogLevel:           settings.LogLevel,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	store.cached = &settings
	return nil
}

// Invalidate drops the cached value so the next Load reads the file again.
func (store *SettingsStore) Invalidate() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cached = nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.FocusMinutes > 0 {
		settings.FocusMinutes = fileData.FocusMinutes
	}
	if fileData.BreakMinutes > 0 {
		settings.BreakMinutes = fileData.BreakMinutes
	}
	if fileData.SessionLabel != "" {
		settings.SessionLabel = fileData.SessionLabel
	}
	if fileData.Exercise != "" {
		settings.Exercise = fileData.Exercise
	}
	if fileData.IdlePauseAfterMins > 0 {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseAfterMins) * time.Minute
	}
	if fileData.BreathingOpacity >= 0.5 && fileData.BreathingOpacity <= 1 {
		settings.BreathingOpacity = fileData.BreathingOpacity
	}
	if fileData.DatabaseDriver != "" {
		settings.DatabaseDriver = fileData.DatabaseDriver
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}

	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
	settings.LaunchAtLogin = fileData.LaunchAtLogin
	settings.DatabaseDSN = fileData.DatabaseDSN
	settings.MetricsAddress = fileData.MetricsAddress
}
