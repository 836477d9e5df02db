// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

func TestArticlesRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	records := []types.ArticleRecord{
		{PublicationNumber: "200", ArticleNumber: "A1", Title: "one", Authors: []types.AuthorRecord{}},
		{PublicationNumber: "200", ArticleNumber: "A2", Title: "two", Authors: []types.AuthorRecord{}},
	}

	require.NoError(t, s.WriteArticles(types.CategoryJournal, "200", 1964, records))
	assert.True(t, s.ArticlesExist(types.CategoryJournal, "200", 1964))

	got, err := s.ReadArticles(types.CategoryJournal, "200", 1964)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// Layout matches articleInfo/Journals/200/1964.json.
	assert.FileExists(t, filepath.Join(s.Root(), "articleInfo", "Journals", "200", "1964.json"))
}

func TestReadArticlesMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	got, err := s.ReadArticles(types.CategoryConference, "999", 1970)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, s.ArticlesExist(types.CategoryConference, "999", 1970))
}

func TestWriteArticlesLeavesNoTempFiles(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.WriteArticles(types.CategoryJournal, "200", 1964, nil))

	dir := filepath.Join(s.Root(), "articleInfo", "Journals", "200")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestWriteArticlesNilBecomesEmptyArray(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.WriteArticles(types.CategoryJournal, "200", 1964, nil))

	data, err := os.ReadFile(s.ArticleFile(types.CategoryJournal, "200", 1964))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestPublicationRoundTripAndList(t *testing.T) {
	s := NewStore(t.TempDir())

	pubs := []types.PublicationRecord{
		{Identifier: "200", Title: "Transactions on Widgets", Type: types.TypeJournal, StartYear: "1884", EndYear: "Present"},
		{Identifier: "1000", Title: "Widget Conference", Type: types.TypeConference, StartYear: "1936", EndYear: "1990"},
	}
	for _, p := range pubs {
		require.NoError(t, s.WritePublication(p))
	}

	got, err := s.ReadPublication("200")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Transactions on Widgets", got.Title)
	assert.True(t, got.Current())

	missing, err := s.ReadPublication("404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := s.ListPublications()
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Sorted by identifier.
	assert.Equal(t, "1000", list[0].Identifier)
	assert.Equal(t, "200", list[1].Identifier)
}

func TestWritePublicationRequiresIdentifier(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Error(t, s.WritePublication(types.PublicationRecord{Title: "anonymous"}))
}

func TestYearSnapshotRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	snap := YearSnapshot{
		Records: []searchapi.PublicationResult{
			{Title: "Transactions on Widgets", PublicationNumber: "200", AllYears: "1884 - Present"},
		},
		TotalRecords: 1,
	}
	require.NoError(t, s.WriteYearSnapshot(types.CategoryJournal, 1884, snap))

	got, err := s.ReadYearSnapshot(types.CategoryJournal, 1884)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalRecords)
	assert.Equal(t, searchapi.Text("200"), got.Records[0].PublicationNumber)

	none, err := s.ReadYearSnapshot(types.CategoryJournal, 1885)
	require.NoError(t, err)
	assert.Nil(t, none)

	years, err := s.SnapshotYears(types.CategoryJournal)
	require.NoError(t, err)
	assert.Equal(t, []int{1884}, years)
}

func TestSnapshotYearsMissingDir(t *testing.T) {
	s := NewStore(t.TempDir())
	years, err := s.SnapshotYears(types.CategoryConference)
	require.NoError(t, err)
	assert.Nil(t, years)
}

func TestWriteNameIndex(t *testing.T) {
	s := NewStore(t.TempDir())

	pubs := []types.PublicationRecord{
		{Identifier: "1000", Title: "Widget Conference", Type: types.TypeConference, StartYear: "1936", EndYear: "1990"},
		{Identifier: "200", Title: "Transactions on Widgets", Type: types.TypeJournal, StartYear: "1884", EndYear: "Present"},
	}
	require.NoError(t, s.WriteNameIndex(pubs))

	f, err := os.Open(filepath.Join(s.Root(), "publication_number_index.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"title", "publication_number", "type", "start_year", "end_year"}, rows[0])
	// Sorted by title.
	assert.Equal(t, "Transactions on Widgets", rows[1][0])
	assert.Equal(t, "200", rows[1][1])
	assert.Equal(t, "Widget Conference", rows[2][0])
}
