package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/discover"
	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

const (
	// Conference proceedings begin in 1936 and journals in 1884 in the
	// remote index; earlier years always come back empty.
	defaultConferenceStartYear = 1936
	defaultJournalStartYear    = 1884
)

var discoverCmd = &cobra.Command{
	Use:   "discover [start-year]",
	Short: "Enumerate publications year by year",
	Long: `Discover walks the remote index year by year for both categories, starting
from each category's first known year (conferences 1936, journals 1884), and
writes one snapshot file per year listing that year's publications. Years
whose publication count has not changed since the last run are skipped. A
category's walk stops after consecutive empty years.

The positional start year applies to both categories; -c and -j override the
starting year per category. A year that fails after retries is logged and
skipped; only a remote service unreachable at startup exits non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntP("conference", "c", 0, "starting year for the conference walk (default 1936)")
	discoverCmd.Flags().IntP("journal", "j", 0, "starting year for the journal walk (default 1884)")
	discoverCmd.Flags().String("data-dir", "dataset", "dataset root directory")
	discoverCmd.Flags().Int("max-empty-years", 0, "consecutive empty years that end the walk (default 2)")
	addHTTPFlags(discoverCmd)

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	var startOverride int
	if len(args) == 1 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("start year %q is not a number", args[0])
		}
		startOverride = y
	}

	conferenceStart, _ := cmd.Flags().GetInt("conference")
	journalStart, _ := cmd.Flags().GetInt("journal")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	maxEmpty, _ := cmd.Flags().GetInt("max-empty-years")

	cfg := types.DiscoveryConfig{
		HTTPConfig:          httpConfigFromFlags(cmd),
		ConferenceStartYear: startYearFor(startOverride, conferenceStart, defaultConferenceStartYear),
		JournalStartYear:    startYearFor(startOverride, journalStart, defaultJournalStartYear),
		MaxEmptyYears:       maxEmpty,
		DataDir:             dataDir,
	}

	store := dataset.NewStore(cfg.DataDir)
	client := searchapi.NewHTTPClient(cfg.HTTPConfig, searchOptions(cmd)...)
	d := discover.New(client, store, cfg)

	starts := map[types.Category]int{
		types.CategoryConference: cfg.ConferenceStartYear,
		types.CategoryJournal:    cfg.JournalStartYear,
	}
	for _, category := range types.Categories {
		summary, err := d.DiscoverCategory(cmd.Context(), category, starts[category], os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d fetched, %d skipped, %d empty, %d failed (stopped at %d)\n",
			category, summary.Fetched, summary.Skipped, summary.Empty, summary.Failed,
			summary.StoppedAtYear)
	}
	return nil
}

// startYearFor resolves one category's starting year: per-category flag
// wins, then the positional year shared by both categories, then the
// category default.
func startYearFor(positional, flag, fallback int) int {
	if flag != 0 {
		return flag
	}
	if positional != 0 {
		return positional
	}
	return fallback
}
