package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/butterfly-go/cmd/export"
	"github.com/tphakala/butterfly-go/cmd/list"
	"github.com/tphakala/butterfly-go/cmd/observe"
	"github.com/tphakala/butterfly-go/cmd/sites"
	"github.com/tphakala/butterfly-go/cmd/species"
	"github.com/tphakala/butterfly-go/cmd/stats"
	"github.com/tphakala/butterfly-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "butterfly",
		Short: "Butterfly-Go survey CLI",
		Long:  "Record butterfly observations during field surveys, close survey lists and export reports.",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		list.Command(settings),
		observe.Command(settings),
		stats.Command(settings),
		export.Command(settings),
		sites.Command(settings),
		species.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
