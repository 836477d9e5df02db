// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/bibharvest/pkg/types"
)

const indexFile = "publication_number_index.csv"

// WriteNameIndex writes the human-readable name to identifier mapping as
// CSV at the dataset root, sorted by title for stable diffs.
func (s *Store) WriteNameIndex(pubs []types.PublicationRecord) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating dataset root: %w", err)
	}

	sorted := make([]types.PublicationRecord, len(pubs))
	copy(sorted, pubs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Title != sorted[j].Title {
			return sorted[i].Title < sorted[j].Title
		}
		return sorted[i].Identifier < sorted[j].Identifier
	})

	path := filepath.Join(s.root, indexFile)
	tmp, err := os.CreateTemp(s.root, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"title", "publication_number", "type", "start_year", "end_year"}); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing index header: %w", err)
	}
	for _, p := range sorted {
		row := []string{p.Title, p.Identifier, string(p.Type), p.StartYear, p.EndYear}
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing index row for %s: %w", p.Identifier, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing index: %w", err)
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
