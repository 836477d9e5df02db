// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/bibharvest/internal/dataset"
	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

// IntegrateSummary reports how many publications the integration pass
// produced per category.
type IntegrateSummary struct {
	Journals    int `yaml:"journals"`
	Conferences int `yaml:"conferences"`
}

// Integrate folds every stored year snapshot into the global publication
// set: one publicationInfo/{identifier}.json per publication plus the CSV
// name index. The identifier set only grows: existing records are
// updated in place, never deleted, so a year that later reports zero rows
// cannot silently drop a publication.
func Integrate(store *dataset.Store, w io.Writer) (IntegrateSummary, error) {
	var summary IntegrateSummary

	set := map[string]*types.PublicationRecord{}

	// Start from what previous runs discovered.
	existing, err := store.ListPublications()
	if err != nil {
		return summary, err
	}
	for i := range existing {
		p := existing[i]
		set[p.Identifier] = &p
	}

	if err := integrateJournals(store, set); err != nil {
		return summary, err
	}
	if err := integrateConferences(store, set); err != nil {
		return summary, err
	}

	var all []types.PublicationRecord
	for _, p := range set {
		if err := store.WritePublication(*p); err != nil {
			return summary, err
		}
		all = append(all, *p)
		switch p.Type {
		case types.TypeConference:
			summary.Conferences++
		default:
			summary.Journals++
		}
	}

	if err := store.WriteNameIndex(all); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "integrated %d journals, %d conferences\n", summary.Journals, summary.Conferences)
	return summary, nil
}

func integrateJournals(store *dataset.Store, set map[string]*types.PublicationRecord) error {
	years, err := store.SnapshotYears(types.CategoryJournal)
	if err != nil {
		return err
	}
	for _, year := range years {
		snap, err := store.ReadYearSnapshot(types.CategoryJournal, year)
		if err != nil {
			return err
		}
		if snap == nil {
			continue
		}
		for _, rec := range snap.Records {
			id := string(rec.PublicationNumber)
			if id == "" {
				continue
			}
			start, end := parseYearRange(rec.AllYears)
			upsert(set, types.PublicationRecord{
				Identifier: id,
				Title:      rec.Title,
				Type:       journalType(rec.ContentType),
				StartYear:  start,
				EndYear:    end,
			})

			// Earlier titles in the history are publications of their own.
			for _, h := range rec.TitleHistory {
				hid := string(h.PublicationNumber)
				if hid == "" || h.DisplayTitle == "" {
					continue
				}
				upsert(set, types.PublicationRecord{
					Identifier: hid,
					Title:      h.DisplayTitle,
					Type:       journalType(rec.ContentType),
					StartYear:  string(h.StartYear),
					EndYear:    string(h.EndYear),
				})
			}
		}
	}
	return nil
}

func integrateConferences(store *dataset.Store, set map[string]*types.PublicationRecord) error {
	years, err := store.SnapshotYears(types.CategoryConference)
	if err != nil {
		return err
	}
	for _, year := range years {
		snap, err := store.ReadYearSnapshot(types.CategoryConference, year)
		if err != nil {
			return err
		}
		if snap == nil {
			continue
		}
		for _, rec := range snap.Records {
			parent := string(rec.ParentPublicationNumber)
			if parent == "" {
				continue
			}
			title := rec.ParentTitle
			if title == "" {
				title = rec.DisplayTitle
			}
			if title == "" {
				continue
			}

			series := set[parent]
			if series == nil || series.Type != types.TypeConference {
				upsert(set, types.PublicationRecord{
					Identifier: parent,
					Title:      title,
					Type:       types.TypeConference,
				})
				series = set[parent]
			}

			if len(rec.TitleHistory) > 0 {
				for _, h := range rec.TitleHistory {
					addEdition(series, editionFromHistory(h))
				}
			} else if rec.DisplayTitle != "" && rec.PublicationNumber != "" {
				// Some records carry no history; the record itself is the
				// edition, with no year attached.
				addEdition(series, types.EditionRecord{
					DisplayTitle:      rec.DisplayTitle,
					PublicationNumber: string(rec.PublicationNumber),
				})
			}
		}
	}
	return nil
}

func editionFromHistory(h searchapi.PublicationTitleHistory) types.EditionRecord {
	return types.EditionRecord{
		DisplayTitle:      h.DisplayTitle,
		PublicationNumber: string(h.PublicationNumber),
		Year:              string(h.StartYear),
	}
}

// addEdition replaces an existing edition with the same publication
// number, or appends.
func addEdition(series *types.PublicationRecord, e types.EditionRecord) {
	if e.DisplayTitle == "" || e.PublicationNumber == "" {
		return
	}
	for i, existing := range series.TitleHistory {
		if existing.PublicationNumber == e.PublicationNumber {
			series.TitleHistory[i] = e
			return
		}
	}
	series.TitleHistory = append(series.TitleHistory, e)
}

// upsert merges a discovered record into the set, keeping any title
// history already accumulated for the identifier.
func upsert(set map[string]*types.PublicationRecord, rec types.PublicationRecord) {
	if existing, ok := set[rec.Identifier]; ok {
		rec.TitleHistory = existing.TitleHistory
		if rec.Title == "" {
			rec.Title = existing.Title
		}
		if rec.StartYear == "" {
			rec.StartYear = existing.StartYear
		}
		if rec.EndYear == "" {
			rec.EndYear = existing.EndYear
		}
	}
	r := rec
	set[rec.Identifier] = &r
}

// parseYearRange splits the service's "1884 - Present" style run range.
// A bare year means the publication is still running.
func parseYearRange(allYears string) (start, end string) {
	if i := strings.Index(allYears, " - "); i >= 0 {
		return strings.TrimSpace(allYears[:i]), strings.TrimSpace(allYears[i+3:])
	}
	return strings.TrimSpace(allYears), "Present"
}

// journalType maps the service's content type onto the publication type;
// periodicals split into journals and magazines.
func journalType(contentType string) types.PublicationType {
	if strings.Contains(strings.ToLower(contentType), "magazine") {
		return types.TypeMagazine
	}
	return types.TypeJournal
}
