// Package list implements the survey list commands: create, close and the
// active/closed queries.
package list

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/butterfly-go/internal/analytics"
	"github.com/tphakala/butterfly-go/internal/bootstrap"
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/ledger"
	"github.com/tphakala/butterfly-go/internal/locations"
)

// Command creates the list command tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage survey lists",
	}

	cmd.AddCommand(
		createCommand(settings),
		closeCommand(settings),
		showCommand(settings),
		activeCommand(settings),
		closedCommand(settings),
	)

	return cmd
}

func createCommand(settings *conf.Settings) *cobra.Command {
	var (
		name       string
		date       string
		startTime  string
		locationID string
		customName string
		city       string
		state      string
		latitude   float64
		longitude  float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new survey list",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			input := &ledger.CreateListInput{
				Name:       name,
				Date:       date,
				StartTime:  startTime,
				LocationID: locationID,
			}
			if customName != "" {
				input.CustomLocation = &locations.Location{
					Name:      customName,
					City:      city,
					State:     state,
					Latitude:  latitude,
					Longitude: longitude,
				}
			}
			if input.LocationID == "" && input.CustomLocation == nil {
				input.LocationID = settings.Survey.DefaultLocation
			}

			created, err := service.CreateList(input)
			if err != nil {
				return err
			}

			fmt.Printf("Created list %d %q at %s (%s %s)\n",
				created.ID, created.Name, created.Location.Name, created.Date, created.StartTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the survey list")
	cmd.Flags().StringVar(&date, "date", "", "Survey date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&startTime, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&locationID, "location", "", "Id of a predefined or custom location")
	cmd.Flags().StringVar(&customName, "custom-name", "", "Name for a new custom location")
	cmd.Flags().StringVar(&city, "city", "", "City of the custom location")
	cmd.Flags().StringVar(&state, "state", "", "State of the custom location")
	cmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude of the custom location")
	cmd.Flags().Float64Var(&longitude, "lon", 0, "Longitude of the custom location")

	return cmd
}

func closeCommand(settings *conf.Settings) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "close <list-id>",
		Short: "Close a survey list",
		Long:  "Show the session summary and close the list. With --preview the summary is computed without closing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			// The summary is computed before the close commits so the
			// preview never has side effects.
			target, err := service.GetList(listID)
			if err != nil {
				return err
			}
			observations, err := service.Observations(listID)
			if err != nil {
				return err
			}
			summary := analytics.BuildSummary(&target, observations, service.Taxonomy())
			printSummary(&summary)

			if preview {
				return nil
			}

			closed, err := service.CloseList(listID)
			if err != nil {
				return err
			}
			fmt.Printf("List %d closed at %s %s\n", closed.ID, closed.EndDate, closed.EndTime)
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Show the close summary without closing the list")

	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list-id>",
		Short: "Show a survey list and its observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			target, err := service.GetList(listID)
			if err != nil {
				return err
			}
			observations, err := service.Observations(listID)
			if err != nil {
				return err
			}

			fmt.Printf("%d  %q  %s %s  %s  [%s]\n",
				target.ID, target.Name, target.Date, target.StartTime, target.Location.Name, target.Status)
			if len(observations) == 0 {
				fmt.Println("No observations.")
				return nil
			}
			for i := range observations {
				o := &observations[i]
				line := fmt.Sprintf("%4d  %s  %-28s x%d", o.ID, o.Time, o.ButterflyName, o.Count)
				if o.IsRare() {
					line += "  (rare)"
				}
				if o.Comments != "" {
					line += "  " + o.Comments
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func activeCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show active survey lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			lists, err := service.ActiveLists()
			if err != nil {
				return err
			}
			printLists(lists)
			return nil
		},
	}
}

func closedCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "closed",
		Short: "Show closed survey lists, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			lists, err := service.ClosedLists()
			if err != nil {
				return err
			}
			printLists(lists)
			return nil
		},
	}
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid list id %q", arg)
	}
	return uint(id), nil
}

func printLists(lists []datastore.List) {
	if len(lists) == 0 {
		fmt.Println("No lists.")
		return
	}
	for i := range lists {
		l := &lists[i]
		fmt.Printf("%4d  %-24s %s %s  %s  [%s]\n",
			l.ID, l.Name, l.Date, l.StartTime, l.Location.Name, l.Status)
	}
}

func printSummary(s *analytics.Summary) {
	fmt.Printf("Summary for %q (%s, %s)\n", s.ListName, s.Date, s.Location)
	fmt.Printf("  Unique species: %d\n", s.Species.UniqueKeys)
	fmt.Printf("  Total individuals: %d\n", s.Species.TotalCount)
	fmt.Printf("  Rare species: %d\n", s.RareSpeciesCount)
	fmt.Printf("  Observation span: %s\n", s.Duration)
	if s.Peak != nil {
		fmt.Printf("  Peak activity: %s (%d species)\n", s.Peak.Label, s.Peak.UniqueSpecies)
	}
	for i := range s.Intervals {
		b := &s.Intervals[i]
		fmt.Printf("    %s  %d species, %d individuals, most seen %s (%d)\n",
			b.Label, b.UniqueSpecies, b.TotalCount, b.TopSpecies, b.TopSpeciesCount)
	}
}
