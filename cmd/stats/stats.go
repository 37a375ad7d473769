// Package stats implements the summary statistics command.
package stats

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/butterfly-go/internal/analytics"
	"github.com/tphakala/butterfly-go/internal/bootstrap"
	"github.com/tphakala/butterfly-go/internal/conf"
)

// Command creates the stats command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <list-id>",
		Short: "Show summary statistics for a survey list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid list id %q", args[0])
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			list, err := service.GetList(uint(id))
			if err != nil {
				return err
			}
			observations, err := service.Observations(list.ID)
			if err != nil {
				return err
			}

			summary := analytics.BuildSummary(&list, observations, service.Taxonomy())

			fmt.Printf("%s (%s, %s) [%s]\n", summary.ListName, summary.Date, summary.Location, summary.Status)
			fmt.Printf("Unique species: %d  Total: %d  Rare: %d  Span: %s\n",
				summary.Species.UniqueKeys, summary.Species.TotalCount,
				summary.RareSpeciesCount, summary.Duration)

			fmt.Println("\nSpecies:")
			for i := range summary.Species.Entries {
				e := &summary.Species.Entries[i]
				marker := ""
				if e.IsRare {
					marker = " (rare)"
				}
				fmt.Printf("  %-28s %4d%s\n", e.Name, e.Count, marker)
			}

			fmt.Println("\nFamilies:")
			for i := range summary.Families.Entries {
				e := &summary.Families.Entries[i]
				fmt.Printf("  %-28s %4d\n", e.Name, e.Count)
			}

			if len(summary.Intervals) > 0 {
				fmt.Println("\nActivity by 30 minute interval:")
				for i := range summary.Intervals {
					b := &summary.Intervals[i]
					fmt.Printf("  %s  %d species, %d individuals, most seen %s (%d)\n",
						b.Label, b.UniqueSpecies, b.TotalCount, b.TopSpecies, b.TopSpeciesCount)
				}
			}
			if summary.Peak != nil {
				fmt.Printf("\nPeak activity: %s with %d species", summary.Peak.Label, summary.Peak.UniqueSpecies)
				if summary.PeakRunnerUp != nil {
					fmt.Printf(" (runner-up %s with %d)", summary.PeakRunnerUp.Label, summary.PeakRunnerUp.UniqueSpecies)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
