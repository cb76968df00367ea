package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAppSlug = "calmtide"

// Service defines OS-specific helpers needed by the application.
type Service interface {
	ConfigDir(appName string) (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// ConfigDir returns the per-application configuration directory, creating it if needed.
func (service *platformService) ConfigDir(appName string) (string, error) {
	baseDir, err := userConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(baseDir, appSlug(appName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// SetLaunchAtLogin registers or removes the running executable from the login items.
func SetLaunchAtLogin(service Service, appName string, enabled bool) error {
	if !enabled {
		return service.DisableAutostart(appName)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return service.EnableAutostart(appName, execPath)
}

func userConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// appSlug turns a display name into a lowercase identifier usable in file names.
func appSlug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		return defaultAppSlug
	}
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), "-")
}
