package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/harvest"
	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/internal/state"
	"github.com/pdiddy/bibharvest/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [publication-numbers...]",
	Short: "Fetch article metadata for discovered publications",
	Long: `Harvest walks each publication's years in increasing order, fetching every
result page for a year before anything is written. A year whose remote record
count matches the stored count is skipped. Fresh records are merged with the
stored file: existing records are updated in place, new ones appended, so
repeat runs are idempotent and never lose data.

With no arguments every integrated publication is harvested; pass publication
numbers to restrict the run. A YAML report is written under the state
directory when the run finishes.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().Int("start-year", defaultJournalStartYear, "first year harvested (a publication's own later start wins)")
	harvestCmd.Flags().Int("end-year", 0, "last year harvested, exclusive (default: current year + 1)")
	harvestCmd.Flags().Int("workers", 4, "concurrent publication workers")
	harvestCmd.Flags().Int("page-size", 0, "rows per page requested from the search service (default 100)")
	harvestCmd.Flags().String("data-dir", "dataset", "dataset root directory")
	harvestCmd.Flags().String("state-dir", "state", "directory for the query-state database and run reports")
	addHTTPFlags(harvestCmd)

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	startYear, _ := cmd.Flags().GetInt("start-year")
	endYear, _ := cmd.Flags().GetInt("end-year")
	workers, _ := cmd.Flags().GetInt("workers")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	stateDir, _ := cmd.Flags().GetString("state-dir")

	cfg := types.HarvestConfig{
		HTTPConfig: httpConfigFromFlags(cmd),
		StartYear:  startYear,
		EndYear:    endYear,
		Workers:    workers,
		PageSize:   pageSize,
		DataDir:    dataDir,
		StateDir:   stateDir,
	}

	store := dataset.NewStore(cfg.DataDir)
	pubs, err := store.ListPublications()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		pubs = filterPublications(pubs, args)
		if len(pubs) == 0 {
			return fmt.Errorf("none of the given publication numbers are in the dataset")
		}
	}
	if len(pubs) == 0 {
		return fmt.Errorf("no publications in %s; run discover and integrate first", cfg.DataDir)
	}

	states, err := state.NewStore(cfg.StateDir)
	if err != nil {
		return err
	}
	defer states.Close()

	opts := searchOptions(cmd)
	if cfg.PageSize > 0 {
		opts = append(opts, searchapi.WithPageSize(cfg.PageSize))
	}
	client := searchapi.NewHTTPClient(cfg.HTTPConfig, opts...)
	h := harvest.New(client, store, states, cfg)

	summary := h.Run(cmd.Context(), pubs, os.Stdout)

	reportPath, err := harvest.WriteReport(cfg.StateDir, summary)
	if err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	fmt.Printf("report written to %s\n", reportPath)

	if summary.Failed > 0 {
		return fmt.Errorf("%d publication-year(s) failed harvesting", summary.Failed)
	}
	return nil
}

// filterPublications keeps publications whose identifier is listed.
func filterPublications(pubs []types.PublicationRecord, identifiers []string) []types.PublicationRecord {
	want := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		want[id] = true
	}
	var kept []types.PublicationRecord
	for _, p := range pubs {
		if want[p.Identifier] {
			kept = append(kept, p)
		}
	}
	return kept
}
