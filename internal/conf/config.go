// config.go: settings struct and functions to load and save the application configuration.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for application file logging
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// MainSettings contains top-level application settings
type MainSettings struct {
	Name string    // name of the node running this instance
	Log  LogConfig // file logging settings
}

// SQLiteSettings contains SQLite database settings
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite store
	Path    string // path to the SQLite database file
}

// OutputSettings contains settings for persistence
type OutputSettings struct {
	SQLite SQLiteSettings
}

// SurveySettings contains defaults applied to new survey lists
type SurveySettings struct {
	DefaultLocation string // predefined location id used when none is given
}

// ExportSettings contains settings for report generation
type ExportSettings struct {
	Path string // directory where CSV/HTML exports are written
}

// PhotoSettings contains settings for the species photo lookup
type PhotoSettings struct {
	Enabled  bool   // true to fetch species photos
	Endpoint string // photo provider endpoint
	Timeout  int    // hard timeout in seconds for photo fetches
	CacheTTL int    // photo cache TTL in minutes
}

// GeocodeSettings contains settings for reverse geocoding
type GeocodeSettings struct {
	Enabled  bool   // true to resolve coordinates to place names
	Endpoint string // reverse geocoding endpoint
	Timeout  int    // hard timeout in seconds for geocode lookups
	CacheTTL int    // geocode cache TTL in minutes
}

// Settings contains all application settings
type Settings struct {
	Debug bool // true to enable debug logging

	Main    MainSettings
	Output  OutputSettings
	Survey  SurveySettings
	Export  ExportSettings
	Photos  PhotoSettings
	Geocode GeocodeSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a new Settings struct and stores it
// as the package singleton.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the config into settings
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Validate settings
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	log.Printf("Created default config file at: %s", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// ValidateSettings checks the loaded configuration for values the application
// cannot run with.
func ValidateSettings(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must be set when the SQLite store is enabled")
	}
	if settings.Photos.Timeout < 0 || settings.Geocode.Timeout < 0 {
		return fmt.Errorf("lookup timeouts must not be negative")
	}
	return nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
