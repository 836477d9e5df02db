// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Get(context.Background(), "200", 1964)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestUpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(ctx, YearlyQueryState{
		Identifier:     "200",
		Year:           1964,
		LastTotalCount: 3,
		LastFetchedAt:  fetched,
	}))

	st, err := s.Get(ctx, "200", 1964)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "200", st.Identifier)
	assert.Equal(t, 1964, st.Year)
	assert.Equal(t, 3, st.LastTotalCount)
	assert.True(t, st.LastFetchedAt.Equal(fetched))
}

func TestUpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	require.NoError(t, s.Upsert(ctx, YearlyQueryState{Identifier: "200", Year: 2020, LastTotalCount: 3, LastFetchedAt: first}))
	require.NoError(t, s.Upsert(ctx, YearlyQueryState{Identifier: "200", Year: 2020, LastTotalCount: 4, LastFetchedAt: second}))

	st, err := s.Get(ctx, "200", 2020)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 4, st.LastTotalCount)
	assert.True(t, st.LastFetchedAt.Equal(second))

	// Still a single row.
	all, err := s.List(ctx, "200")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, st := range []YearlyQueryState{
		{Identifier: "201", Year: 1965, LastTotalCount: 1, LastFetchedAt: now},
		{Identifier: "200", Year: 1965, LastTotalCount: 2, LastFetchedAt: now},
		{Identifier: "200", Year: 1964, LastTotalCount: 3, LastFetchedAt: now},
	} {
		require.NoError(t, s.Upsert(ctx, st))
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "200", all[0].Identifier)
	assert.Equal(t, 1964, all[0].Year)
	assert.Equal(t, 1965, all[1].Year)
	assert.Equal(t, "201", all[2].Identifier)

	only200, err := s.List(ctx, "200")
	require.NoError(t, err)
	assert.Len(t, only200, 2)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, YearlyQueryState{
		Identifier: "200", Year: 1964, LastTotalCount: 3, LastFetchedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	st, err := reopened.Get(ctx, "200", 1964)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 3, st.LastTotalCount)
}
