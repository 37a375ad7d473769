package main

import (
	"os"

	"github.com/tphakala/butterfly-go/cmd"
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/logging"
)

func main() {
	// Initialize the logging system first so every subsystem logger works.
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Error("error loading configuration", "error", err)
		os.Exit(1)
	}

	// Route structured logs to the rotating log file when file logging is
	// enabled; the human-readable logger stays on stderr either way.
	var closeLog func() error
	if settings.Main.Log.Enabled {
		closeLog, err = logging.SetFileOutput(settings.Main.Log.Path)
		if err != nil {
			logging.Error("error opening log file", "path", settings.Main.Log.Path, "error", err)
			os.Exit(1)
		}
	}

	rootCmd := cmd.RootCommand(settings)
	err = rootCmd.Execute()

	if closeLog != nil {
		if closeErr := closeLog(); closeErr != nil {
			logging.Error("error closing log file", "error", closeErr)
		}
	}
	if err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
