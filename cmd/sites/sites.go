// Package sites implements the observation site listing command.
package sites

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/butterfly-go/internal/bootstrap"
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/geocode"
)

// Command creates the sites command.
func Command(settings *conf.Settings) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Show the known observation sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			var geocoder *geocode.Client
			if resolve && settings.Geocode.Enabled {
				geocoder, err = geocode.NewClient(&settings.Geocode)
				if err != nil {
					return err
				}
			}

			for _, loc := range service.Locations().All() {
				kind := string(loc.Type)
				if loc.IsCustom {
					kind += ", custom"
				}
				fmt.Printf("%-18s %-32s %8.4f %9.4f  [%s]\n",
					loc.ID, loc.Name, loc.Latitude, loc.Longitude, kind)

				if geocoder != nil {
					place := geocoder.Resolve(cmd.Context(), loc.Latitude, loc.Longitude)
					fmt.Printf("%-18s resolved: %s\n", "", place.DisplayName)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "Reverse geocode each site's coordinates")

	return cmd
}
