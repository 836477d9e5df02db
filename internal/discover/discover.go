// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover walks the remote service year by year to enumerate
// every publication, and folds the per-year snapshots into the global
// publication set.
package discover

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

// DefaultMaxEmptyYears terminates a category walk after this many
// consecutive years with zero publications. Configurable because real
// series can have longer legitimate gaps.
const DefaultMaxEmptyYears = 2

// CategorySummary reports one category's walk for the operator log.
type CategorySummary struct {
	Category types.Category `yaml:"category"`

	Fetched int `yaml:"fetched"`
	Skipped int `yaml:"skipped"`
	Empty   int `yaml:"empty"`
	Failed  int `yaml:"failed"`

	// StoppedAtYear is the first year not walked, recorded so an operator
	// can spot a premature termination caused by a multi-year gap.
	StoppedAtYear int `yaml:"stopped_at_year"`

	// FailedYears lists years left incomplete after retries exhausted.
	FailedYears []int `yaml:"failed_years,omitempty"`
}

// Discoverer enumerates publications per category and year.
type Discoverer struct {
	client searchapi.Client
	store  *dataset.Store
	cfg    types.DiscoveryConfig

	// nowYear is overridable in tests.
	nowYear func() int
}

// New creates a Discoverer.
func New(client searchapi.Client, store *dataset.Store, cfg types.DiscoveryConfig) *Discoverer {
	if cfg.MaxEmptyYears <= 0 {
		cfg.MaxEmptyYears = DefaultMaxEmptyYears
	}
	return &Discoverer{
		client:  client,
		store:   store,
		cfg:     cfg,
		nowYear: func() int { return time.Now().Year() },
	}
}

// DiscoverCategory walks years from startYear until the empty-year
// heuristic fires, writing one snapshot file per year with that year's
// publication list. A year whose pages cannot all be fetched is recorded
// as failed and left untouched; the walk continues. The returned error is
// non-nil only when the very first probe fails, which means the remote
// service is unreachable.
func (d *Discoverer) DiscoverCategory(ctx context.Context, category types.Category, startYear int, w io.Writer) (CategorySummary, error) {
	summary := CategorySummary{Category: category}
	emptyStreak := 0
	probed := false

	year := startYear
	for {
		if err := ctx.Err(); err != nil {
			summary.StoppedAtYear = year
			return summary, err
		}
		// The heuristic terminates the walk in practice; the calendar
		// bound is a backstop against a service that reports phantom
		// future content.
		if year > d.nowYear()+1 {
			break
		}

		probe, err := d.client.BrowsePublications(ctx, category, year, 1)
		if err != nil {
			if !probed {
				return summary, fmt.Errorf("probing %s year %d: %w", category, year, err)
			}
			fmt.Fprintf(w, "%s %d: failed (%v)\n", category, year, err)
			summary.Failed++
			summary.FailedYears = append(summary.FailedYears, year)
			// A failed year is unknown, not empty: it breaks the streak so
			// empties separated by a failure never count as consecutive.
			emptyStreak = 0
			year++
			continue
		}
		probed = true

		if probe.TotalRecords == 0 {
			summary.Empty++
			emptyStreak++
			if emptyStreak >= d.cfg.MaxEmptyYears {
				fmt.Fprintf(w, "%s: %d consecutive empty years ending %d, stopping\n",
					category, emptyStreak, year)
				year++
				break
			}
			year++
			continue
		}
		emptyStreak = 0

		existing, err := d.store.ReadYearSnapshot(category, year)
		if err != nil {
			return summary, err
		}
		if existing != nil && existing.TotalRecords == probe.TotalRecords {
			fmt.Fprintf(w, "%s %d: skipped (unchanged, %d publications)\n", category, year, probe.TotalRecords)
			summary.Skipped++
			year++
			continue
		}

		records, err := d.fetchAllPages(ctx, category, year, probe)
		if err != nil {
			fmt.Fprintf(w, "%s %d: failed (%v)\n", category, year, err)
			summary.Failed++
			summary.FailedYears = append(summary.FailedYears, year)
			year++
			continue
		}

		snap := dataset.YearSnapshot{Records: records, TotalRecords: probe.TotalRecords}
		if err := d.store.WriteYearSnapshot(category, year, snap); err != nil {
			return summary, err
		}
		fmt.Fprintf(w, "%s %d: fetched (%d publications)\n", category, year, len(records))
		summary.Fetched++
		year++
	}

	summary.StoppedAtYear = year
	return summary, nil
}

// fetchAllPages collects every page for a (category, year), reusing the
// already-fetched first page. Any page failure fails the whole year so a
// partial list is never written.
func (d *Discoverer) fetchAllPages(ctx context.Context, category types.Category, year int, first *searchapi.PublicationPage) ([]searchapi.PublicationResult, error) {
	records := append([]searchapi.PublicationResult(nil), first.Records...)
	for page := 2; page <= first.TotalPages; page++ {
		p, err := d.client.BrowsePublications(ctx, category, year, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(p.Records) == 0 {
			break
		}
		records = append(records, p.Records...)
	}
	return records, nil
}
