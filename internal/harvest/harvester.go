// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest walks publications year by year, fetching every result
// page for a (publication, year) before anything is persisted, merging
// with previously stored records, and skipping years whose remote count
// has not changed since the last run.
package harvest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/record"
	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/internal/state"
	"github.com/pdiddy/bibharvest/pkg/types"
)

// Outcome classifies what happened to one (publication, year).
type Outcome string

const (
	// OutcomeFetched means all pages were retrieved and the file rewritten.
	OutcomeFetched Outcome = "fetched"

	// OutcomeSkipped means the remote count matched the stored one and the
	// refetch was skipped.
	OutcomeSkipped Outcome = "skipped-unchanged"

	// OutcomeEmpty means the year has no remote records.
	OutcomeEmpty Outcome = "empty"

	// OutcomeFailed means retries were exhausted and the previous stored
	// state was preserved untouched.
	OutcomeFailed Outcome = "failed"
)

// YearResult is the per-(publication, year) audit record.
type YearResult struct {
	Identifier string         `yaml:"identifier"`
	Category   types.Category `yaml:"category"`
	Year       int            `yaml:"year"`
	Outcome    Outcome        `yaml:"outcome"`

	// Records is the stored record count after the merge.
	Records int `yaml:"records"`

	Stats record.MergeStats `yaml:"stats"`

	Error string `yaml:"error,omitempty"`
}

// PublicationSummary aggregates one publication's year results.
type PublicationSummary struct {
	Identifier string       `yaml:"identifier"`
	Title      string       `yaml:"title"`
	Results    []YearResult `yaml:"results"`

	Fetched int `yaml:"fetched"`
	Skipped int `yaml:"skipped"`
	Empty   int `yaml:"empty"`
	Failed  int `yaml:"failed"`
}

// Harvester fetches and merges article records.
type Harvester struct {
	client searchapi.Client
	store  *dataset.Store
	states *state.Store
	cfg    types.HarvestConfig

	logMu sync.Mutex
	now   func() time.Time
}

// New creates a Harvester.
func New(client searchapi.Client, store *dataset.Store, states *state.Store, cfg types.HarvestConfig) *Harvester {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Harvester{
		client: client,
		store:  store,
		states: states,
		cfg:    cfg,
		now:    time.Now,
	}
}

// logf serializes operator output across workers.
func (h *Harvester) logf(w io.Writer, format string, args ...any) {
	h.logMu.Lock()
	defer h.logMu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// categoryOf maps a publication's type onto its dataset category.
func categoryOf(pub types.PublicationRecord) types.Category {
	if pub.Type == types.TypeConference {
		return types.CategoryConference
	}
	return types.CategoryJournal
}

// yearRange resolves the [start, end) walk bounds for one publication:
// the configured start, narrowed by the publication's own run when known.
func (h *Harvester) yearRange(pub types.PublicationRecord) (start, end int) {
	start = h.cfg.StartYear
	if y, err := strconv.Atoi(pub.StartYear); err == nil && y > start {
		start = y
	}
	end = h.cfg.EndYear
	if end <= 0 {
		end = h.now().Year() + 1
	}
	if y, err := strconv.Atoi(pub.EndYear); err == nil && y+1 < end {
		end = y + 1
	}
	return start, end
}

// HarvestPublication walks one publication's years in increasing order.
// Years are strictly sequential within a publication because the change
// detector's state comparisons are stateful. A failed year is recorded
// and skipped; it never aborts the publication.
func (h *Harvester) HarvestPublication(ctx context.Context, pub types.PublicationRecord, w io.Writer) PublicationSummary {
	summary := PublicationSummary{Identifier: pub.Identifier, Title: pub.Title}
	category := categoryOf(pub)
	start, end := h.yearRange(pub)

	for year := start; year < end; year++ {
		if ctx.Err() != nil {
			break
		}
		result := h.harvestYear(ctx, category, pub.Identifier, year)
		switch result.Outcome {
		case OutcomeFetched:
			summary.Fetched++
			h.logf(w, "%s %s %d: fetched %d records (%d added, %d updated, %d rejected)\n",
				category, pub.Identifier, year, result.Records,
				result.Stats.Added, result.Stats.Updated, result.Stats.Rejected)
		case OutcomeSkipped:
			summary.Skipped++
			h.logf(w, "%s %s %d: skipped (unchanged, %d records)\n",
				category, pub.Identifier, year, result.Records)
		case OutcomeEmpty:
			summary.Empty++
		case OutcomeFailed:
			summary.Failed++
			h.logf(w, "%s %s %d: failed, previous state preserved (%s)\n",
				category, pub.Identifier, year, result.Error)
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

// harvestYear runs the change-detector gate and, when needed, the full
// pagination for one (publication, year). Nothing is written unless every
// page was fetched.
func (h *Harvester) harvestYear(ctx context.Context, category types.Category, identifier string, year int) YearResult {
	result := YearResult{Identifier: identifier, Category: category, Year: year}

	// The first page doubles as the count probe; when a refetch is needed
	// it is reused as page 1.
	probe, err := h.client.SearchArticles(ctx, identifier, year, 1)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	total := probe.TotalRecords
	if total == 0 {
		result.Outcome = OutcomeEmpty
		h.recordState(ctx, identifier, year, 0)
		return result
	}

	st, err := h.states.Get(ctx, identifier, year)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}
	if st != nil && st.LastTotalCount == total && h.store.ArticlesExist(category, identifier, year) {
		result.Outcome = OutcomeSkipped
		result.Records = total
		h.recordState(ctx, identifier, year, total)
		return result
	}

	raws, err := h.fetchAllPages(ctx, identifier, year, probe)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	fresh, rejected := record.NormalizeAll(raws)

	existing, err := h.store.ReadArticles(category, identifier, year)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}

	merged, stats := record.Merge(existing, fresh)
	stats.Rejected = rejected

	if err := h.store.WriteArticles(category, identifier, year, merged); err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		return result
	}
	h.recordState(ctx, identifier, year, total)

	result.Outcome = OutcomeFetched
	result.Records = len(merged)
	result.Stats = stats
	return result
}

// fetchAllPages accumulates raw records page by page until the reported
// total is covered or a page comes back empty. Counting accumulated
// records rather than pages keeps the predicate correct whatever page
// size the client was configured with. Any page error fails the whole
// year; partial years are never returned.
func (h *Harvester) fetchAllPages(ctx context.Context, identifier string, year int, first *searchapi.ArticlePage) ([]searchapi.RawRecord, error) {
	raws := append([]searchapi.RawRecord(nil), first.Records...)
	total := first.TotalRecords

	for page := 2; len(raws) < total; page++ {
		p, err := h.client.SearchArticles(ctx, identifier, year, page)
		if err != nil {
			return nil, fmt.Errorf("page %d of %d records: %w", page, total, err)
		}
		if len(p.Records) == 0 {
			break
		}
		raws = append(raws, p.Records...)
	}
	return raws, nil
}

// recordState upserts the yearly query state. State write failures are
// not fatal: the dataset file is already correct and the next run will
// simply refetch.
func (h *Harvester) recordState(ctx context.Context, identifier string, year, total int) {
	_ = h.states.Upsert(ctx, state.YearlyQueryState{
		Identifier:     identifier,
		Year:           year,
		LastTotalCount: total,
		LastFetchedAt:  h.now().UTC(),
	})
}
