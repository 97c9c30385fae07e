package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trailmind/trailmind/pkg/history"
	"github.com/trailmind/trailmind/pkg/kv"
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Manage saved trips",
}

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, closeStore, err := openHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		trips, err := hist.SavedTrips(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(trips) == 0 {
			fmt.Println(styles.Help.Render("No saved trips yet."))
			return nil
		}
		for _, trip := range trips {
			fmt.Println(styles.Help.Render(trip.ID))
			fmt.Println(styles.RenderTripCard(trip.Data))
		}
		return nil
	},
}

var tripsSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a trip from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var trip map[string]any
		if err := json.Unmarshal(data, &trip); err != nil {
			return fmt.Errorf("parse trip: %w", err)
		}

		hist, closeStore, err := openHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		id, err := hist.SaveTrip(cmd.Context(), userID, trip)
		if err != nil {
			return err
		}
		fmt.Printf("Saved trip %s\n", id)
		return nil
	},
}

var tripsDeleteCmd = &cobra.Command{
	Use:   "delete <trip-id>",
	Short: "Delete a saved trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, closeStore, err := openHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := hist.DeleteTrip(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted trip %s\n", args[0])
		return nil
	},
}

func openHistory() (*history.Store, func(), error) {
	cliCtx, err := currentContext()
	if err != nil {
		return nil, nil, err
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: globalConfig.ResolveDataDir(cliCtx)})
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}
	return history.New(store), func() { store.Close() }, nil
}

func init() {
	tripsCmd.AddCommand(tripsListCmd)
	tripsCmd.AddCommand(tripsSaveCmd)
	tripsCmd.AddCommand(tripsDeleteCmd)
}
