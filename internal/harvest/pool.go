// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pdiddy/bibharvest/pkg/types"
)

// RunSummary aggregates an entire harvest run across publications.
type RunSummary struct {
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Publications []PublicationSummary `yaml:"publications"`

	Fetched int `yaml:"fetched"`
	Skipped int `yaml:"skipped"`
	Empty   int `yaml:"empty"`
	Failed  int `yaml:"failed"`
}

// Run harvests the given publications with cfg.Workers concurrent
// workers. The queue is deduplicated by identifier so no (publication,
// year) query is issued twice in one run; within a publication years
// stay sequential on a single worker. Results come back sorted by
// identifier regardless of worker scheduling.
func (h *Harvester) Run(ctx context.Context, pubs []types.PublicationRecord, w io.Writer) RunSummary {
	summary := RunSummary{StartedAt: h.now().UTC()}

	queue := make(chan types.PublicationRecord)
	results := make(chan PublicationSummary)

	var wg sync.WaitGroup
	for i := 0; i < h.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pub := range queue {
				results <- h.HarvestPublication(ctx, pub, w)
			}
		}()
	}

	go func() {
		defer close(queue)
		seen := map[string]bool{}
		for _, pub := range pubs {
			if pub.Identifier == "" || seen[pub.Identifier] {
				continue
			}
			seen[pub.Identifier] = true
			select {
			case queue <- pub:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for ps := range results {
		summary.Publications = append(summary.Publications, ps)
		summary.Fetched += ps.Fetched
		summary.Skipped += ps.Skipped
		summary.Empty += ps.Empty
		summary.Failed += ps.Failed
	}
	sort.Slice(summary.Publications, func(i, j int) bool {
		return summary.Publications[i].Identifier < summary.Publications[j].Identifier
	})

	summary.FinishedAt = h.now().UTC()
	h.logf(w, "harvest complete: %d fetched, %d skipped, %d empty, %d failed across %d publications\n",
		summary.Fetched, summary.Skipped, summary.Empty, summary.Failed, len(summary.Publications))
	return summary
}
