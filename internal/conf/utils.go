// conf/utils.go helpers for locating configuration and data files.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetDefaultConfigPaths returns a list of default configuration paths for the current operating system.
// It determines paths based on standard conventions for storing application configuration files.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		configPaths = []string{
			filepath.Join(appData, "butterfly-go"),
			".",
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "butterfly-go"),
			".",
		}
	}

	return configPaths, nil
}

// GetBasePath expands a relative directory to an absolute one rooted at the
// working directory, creating it if needed.
func GetBasePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	basePath := filepath.Join(wd, path)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return path
	}
	return basePath
}
