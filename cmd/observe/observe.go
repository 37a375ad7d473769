// Package observe implements the observation commands: add, more, edit and
// delete.
package observe

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/butterfly-go/internal/bootstrap"
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/ledger"
)

// Command creates the observe command tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Record and maintain observations",
	}

	cmd.AddCommand(
		addCommand(settings),
		moreCommand(settings),
		editCommand(settings),
		deleteCommand(settings),
	)

	return cmd
}

func addCommand(settings *conf.Settings) *cobra.Command {
	var (
		listID      uint
		speciesName string
		count       int
		speciesType string
		obsDate     string
		obsTime     string
		comments    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an observation on an active list",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			obs, err := service.AddObservation(&ledger.AddObservationInput{
				ListID:      listID,
				SpeciesName: speciesName,
				Count:       count,
				SpeciesType: speciesType,
				Date:        obsDate,
				Time:        obsTime,
				Comments:    comments,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded observation %d: %s x%d at %s\n",
				obs.ID, obs.ButterflyName, obs.Count, obs.Time)
			return nil
		},
	}

	cmd.Flags().UintVar(&listID, "list", 0, "Id of the active list")
	cmd.Flags().StringVar(&speciesName, "species", "", "Common name of the species")
	cmd.Flags().IntVar(&count, "count", 1, "Number of individuals seen")
	cmd.Flags().StringVar(&speciesType, "type", "common", "Species type: common or rare")
	cmd.Flags().StringVar(&obsDate, "date", "", "Observation date (YYYY-MM-DD, defaults to the list date)")
	cmd.Flags().StringVar(&obsTime, "time", "", "Observation time (HH:MM, defaults to now)")
	cmd.Flags().StringVar(&comments, "comments", "", "Free-text comments")

	return cmd
}

func moreCommand(settings *conf.Settings) *cobra.Command {
	var (
		count    int
		obsTime  string
		comments string
	)

	cmd := &cobra.Command{
		Use:   "more <observation-id>",
		Short: "Record the same species again at a new time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obsID, err := parseID(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			obs, err := service.AddMore(obsID, count, obsTime, comments)
			if err != nil {
				return err
			}

			fmt.Printf("Recorded observation %d: %s x%d at %s\n",
				obs.ID, obs.ButterflyName, obs.Count, obs.Time)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "Number of individuals seen")
	cmd.Flags().StringVar(&obsTime, "time", "", "Observation time (HH:MM, defaults to now)")
	cmd.Flags().StringVar(&comments, "comments", "", "Free-text comments")

	return cmd
}

func editCommand(settings *conf.Settings) *cobra.Command {
	var (
		count    int
		comments string
	)

	cmd := &cobra.Command{
		Use:   "edit <observation-id>",
		Short: "Edit the count and comments of an observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obsID, err := parseID(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			obs, err := service.EditObservation(obsID, count, comments)
			if err != nil {
				return err
			}

			fmt.Printf("Updated observation %d: %s x%d\n", obs.ID, obs.ButterflyName, obs.Count)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "New count")
	cmd.Flags().StringVar(&comments, "comments", "", "New comments")

	return cmd
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <observation-id>",
		Short: "Delete an observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obsID, err := parseID(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := bootstrap.NewService(settings)
			if err != nil {
				return err
			}
			defer bootstrap.Shutdown(closeStore)

			if err := service.DeleteObservation(obsID); err != nil {
				return err
			}

			fmt.Printf("Deleted observation %d\n", obsID)
			return nil
		},
	}
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid observation id %q", arg)
	}
	return uint(id), nil
}
