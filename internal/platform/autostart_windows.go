//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName, execPath string) error {
	if appName == "" {
		return fmt.Errorf("enable autostart: app name is empty")
	}
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}

	output, err := runReg("add", registryRunKey, "/v", registryValueName(appName), "/t", "REG_SZ", "/d", quoteWindowsPath(execPath), "/f")
	if err != nil {
		return fmt.Errorf("enable autostart: reg add: %w: %s", err, output)
	}

	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	if appName == "" {
		return fmt.Errorf("disable autostart: app name is empty")
	}

	name := registryValueName(appName)
	if _, err := runReg("query", registryRunKey, "/v", name); err != nil {
		// Not registered.
		return nil
	}
	output, err := runReg("delete", registryRunKey, "/v", name, "/f")
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete: %w: %s", err, output)
	}

	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func runReg(args ...string) (string, error) {
	output, err := exec.Command("reg", args...).CombinedOutput()
	return strings.TrimSpace(string(output)), err
}

func registryValueName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		return "Calmtide"
	}
	return name
}

func quoteWindowsPath(execPath string) string {
	trimmed := strings.Trim(execPath, `"`)
	return fmt.Sprintf(`"%s"`, trimmed)
}
