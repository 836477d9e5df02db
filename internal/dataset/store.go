// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset owns the on-disk layout of the harvested metadata:
//
//	articleInfo/{Conferences|Journals}/{identifier}/{year}.json
//	publicationInfo/{identifier}.json
//	publicationInfo/{Conferences|Journals}/years/{year}.json
//	publication_number_index.csv
//
// All writes go through a temp file and an atomic rename, so an
// interrupted run never leaves a truncated file that could pass as
// complete.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

const (
	articleDir     = "articleInfo"
	publicationDir = "publicationInfo"
	yearsDir       = "years"
)

// Store reads and writes the dataset tree rooted at one directory.
type Store struct {
	root string
}

// NewStore creates a store over root. Directories are created lazily on
// first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the dataset root directory.
func (s *Store) Root() string { return s.root }

// ArticleFile returns the path of the per-(category, identifier, year)
// article file.
func (s *Store) ArticleFile(category types.Category, identifier string, year int) string {
	return filepath.Join(s.root, articleDir, string(category), identifier, fmt.Sprintf("%d.json", year))
}

// ArticlesExist reports whether a stored article file exists for the key.
func (s *Store) ArticlesExist(category types.Category, identifier string, year int) bool {
	_, err := os.Stat(s.ArticleFile(category, identifier, year))
	return err == nil
}

// ReadArticles loads the stored article records for a publication-year.
// A missing file is not an error; it returns an empty slice.
func (s *Store) ReadArticles(category types.Category, identifier string, year int) ([]types.ArticleRecord, error) {
	data, err := os.ReadFile(s.ArticleFile(category, identifier, year))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading articles for %s/%s/%d: %w", category, identifier, year, err)
	}
	var records []types.ArticleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing articles for %s/%s/%d: %w", category, identifier, year, err)
	}
	return records, nil
}

// WriteArticles atomically replaces the article file for a
// publication-year with the given ordered records.
func (s *Store) WriteArticles(category types.Category, identifier string, year int, records []types.ArticleRecord) error {
	if records == nil {
		records = []types.ArticleRecord{}
	}
	return writeJSON(s.ArticleFile(category, identifier, year), records)
}

// publicationFile is publicationInfo/{identifier}.json.
func (s *Store) publicationFile(identifier string) string {
	return filepath.Join(s.root, publicationDir, identifier+".json")
}

// ReadPublication loads one publication record; missing returns (nil, nil).
func (s *Store) ReadPublication(identifier string) (*types.PublicationRecord, error) {
	data, err := os.ReadFile(s.publicationFile(identifier))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading publication %s: %w", identifier, err)
	}
	var rec types.PublicationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing publication %s: %w", identifier, err)
	}
	return &rec, nil
}

// WritePublication atomically writes one publication record.
func (s *Store) WritePublication(rec types.PublicationRecord) error {
	if rec.Identifier == "" {
		return fmt.Errorf("publication record has no identifier")
	}
	return writeJSON(s.publicationFile(rec.Identifier), rec)
}

// ListPublications loads every stored publication record, sorted by
// identifier. Identifiers are never removed by later runs, only added or
// overwritten, so this is the authoritative harvest worklist.
func (s *Store) ListPublications() ([]types.PublicationRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, publicationDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing publications: %w", err)
	}

	var pubs []types.PublicationRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := s.ReadPublication(id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			pubs = append(pubs, *rec)
		}
	}
	sort.Slice(pubs, func(i, j int) bool { return pubs[i].Identifier < pubs[j].Identifier })
	return pubs, nil
}

// YearSnapshot is the discovery output for one (category, year): the raw
// publication list plus the authoritative count used for change detection.
type YearSnapshot struct {
	Records      []searchapi.PublicationResult `json:"records"`
	TotalRecords int                           `json:"totalRecords"`
}

// yearSnapshotFile is publicationInfo/{category}/years/{year}.json.
func (s *Store) yearSnapshotFile(category types.Category, year int) string {
	return filepath.Join(s.root, publicationDir, string(category), yearsDir, fmt.Sprintf("%d.json", year))
}

// ReadYearSnapshot loads a discovery snapshot; missing returns (nil, nil).
func (s *Store) ReadYearSnapshot(category types.Category, year int) (*YearSnapshot, error) {
	data, err := os.ReadFile(s.yearSnapshotFile(category, year))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s snapshot for %d: %w", category, year, err)
	}
	var snap YearSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing %s snapshot for %d: %w", category, year, err)
	}
	return &snap, nil
}

// WriteYearSnapshot atomically replaces a discovery snapshot.
func (s *Store) WriteYearSnapshot(category types.Category, year int, snap YearSnapshot) error {
	return writeJSON(s.yearSnapshotFile(category, year), snap)
}

// SnapshotYears returns the years with stored snapshots for a category, in
// ascending order.
func (s *Store) SnapshotYears(category types.Category) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, publicationDir, string(category), yearsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s snapshots: %w", category, err)
	}

	var years []int
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		year, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// writeJSON writes v to path via a temp file in the same directory and an
// atomic rename.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
