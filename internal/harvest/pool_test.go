// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

func TestRunDeduplicatesIdentifiers(t *testing.T) {
	client := &mockClient{scripts: map[string]*yearScript{
		scriptKey("200", 1964): {
			total: 1,
			pages: map[int][]searchapi.RawRecord{1: {rawArticle("A1", "First")}},
		},
	}}
	h, _, _ := newTestHarvester(t, client, types.HarvestConfig{StartYear: 1964, EndYear: 1965})

	pubs := []types.PublicationRecord{
		journalPub("200"),
		journalPub("200"),
		{Identifier: ""},
	}
	var buf bytes.Buffer
	summary := h.Run(context.Background(), pubs, &buf)

	assert.Len(t, summary.Publications, 1)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 1, client.calls["200/1964/1"], "duplicate identifier must not be queried twice")
}

func TestRunAggregatesAcrossWorkers(t *testing.T) {
	client := &mockClient{scripts: map[string]*yearScript{
		scriptKey("200", 1964): {
			total: 1,
			pages: map[int][]searchapi.RawRecord{1: {rawArticle("A1", "First")}},
		},
		scriptKey("300", 1964): {
			total: 1,
			pages: map[int][]searchapi.RawRecord{1: {{
				"publicationNumber": "300",
				"articleNumber":     "B1",
				"articleTitle":      "Other",
			}}},
		},
	}}
	h, _, _ := newTestHarvester(t, client, types.HarvestConfig{StartYear: 1964, EndYear: 1965})
	h.cfg.Workers = 2

	var buf bytes.Buffer
	summary := h.Run(context.Background(), []types.PublicationRecord{journalPub("300"), journalPub("200")}, &buf)

	require.Len(t, summary.Publications, 2)
	assert.Equal(t, "200", summary.Publications[0].Identifier)
	assert.Equal(t, "300", summary.Publications[1].Identifier)
	assert.Equal(t, 2, summary.Fetched)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	client := &mockClient{scripts: map[string]*yearScript{}}
	h, _, _ := newTestHarvester(t, client, types.HarvestConfig{StartYear: 1964, EndYear: 1970})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	summary := h.Run(ctx, []types.PublicationRecord{journalPub("200")}, &buf)
	assert.Equal(t, 0, summary.Fetched)
}

func TestWriteReportRoundTrips(t *testing.T) {
	dir := t.TempDir()
	summary := RunSummary{
		StartedAt:  time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 24, 12, 5, 0, 0, time.UTC),
		Fetched:    2,
		Publications: []PublicationSummary{
			{Identifier: "200", Title: "Transactions on Widgets", Fetched: 2},
		},
	}

	path, err := WriteReport(dir, summary)
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded RunSummary
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Fetched)
	require.Len(t, decoded.Publications, 1)
	assert.Equal(t, "200", decoded.Publications[0].Identifier)
}
