// Package species implements the reference catalog search command.
package species

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/imageprovider"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// Command creates the species command.
func Command(settings *conf.Settings) *cobra.Command {
	var withPhoto bool

	cmd := &cobra.Command{
		Use:   "species <query>",
		Short: "Search the butterfly reference catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxa, err := taxonomy.Load()
			if err != nil {
				return err
			}

			matches := taxa.Search(args[0])
			if len(matches) == 0 {
				fmt.Println("No matching species.")
				return nil
			}

			var photos *imageprovider.Client
			if withPhoto && settings.Photos.Enabled {
				photos, err = imageprovider.NewClient(&settings.Photos)
				if err != nil {
					return err
				}
			}

			for i := range matches {
				sp := &matches[i]
				fmt.Printf("%3d  %-26s %-28s %s", sp.ID, sp.CommonName, sp.ScientificName, sp.Family)
				if sp.Subfamily != "" {
					fmt.Printf(" / %s", sp.Subfamily)
				}
				fmt.Println()

				if photos != nil {
					info := photos.Fetch(cmd.Context(), sp.ScientificName)
					if info.Placeholder {
						fmt.Println("     photo: unavailable")
					} else {
						fmt.Printf("     photo: %s\n", info.URL)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPhoto, "photo", false, "Fetch a photo URL for each match")

	return cmd
}
