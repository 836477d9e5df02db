package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/discover"
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Fold yearly snapshots into the publication set",
	Long: `Integrate reads every stored year snapshot and produces one publication
record per identifier, grouping conference editions under their parent series
and promoting historical journal titles to publications of their own. The
identifier set only grows: publications discovered by earlier runs survive
even when the current snapshots no longer mention them. The CSV name index
is rewritten last.`,
	RunE: runIntegrate,
}

func init() {
	integrateCmd.Flags().String("data-dir", "dataset", "dataset root directory")

	rootCmd.AddCommand(integrateCmd)
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	store := dataset.NewStore(dataDir)

	_, err := discover.Integrate(store, os.Stdout)
	return err
}
