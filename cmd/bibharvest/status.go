package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibharvest/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status [publication-number]",
	Short: "Show recorded harvest state",
	Long: `Status lists the per-(publication, year) query state the harvester uses for
change detection: the last remote record count observed and when. Pass a
publication number to restrict the listing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("state-dir", "state", "directory holding the query-state database")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	stateDir, _ := cmd.Flags().GetString("state-dir")

	states, err := state.NewStore(stateDir)
	if err != nil {
		return err
	}
	defer states.Close()

	identifier := ""
	if len(args) == 1 {
		identifier = args[0]
	}

	rows, err := states.List(cmd.Context(), identifier)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no harvest state recorded")
		return nil
	}

	fmt.Printf("%-15s %6s %8s  %s\n", "PUBLICATION", "YEAR", "RECORDS", "LAST FETCHED")
	for _, st := range rows {
		fmt.Printf("%-15s %6d %8d  %s\n",
			st.Identifier, st.Year, st.LastTotalCount,
			st.LastFetchedAt.Format(time.RFC3339))
	}
	return nil
}
