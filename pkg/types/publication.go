// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category distinguishes the two publication kinds the dataset tracks.
type Category string

const (
	CategoryConference Category = "Conferences"
	CategoryJournal    Category = "Journals"
)

// Categories lists all known categories in a stable order.
var Categories = []Category{CategoryConference, CategoryJournal}

// PublicationType is the descriptive kind of a publication.
type PublicationType string

const (
	TypeJournal    PublicationType = "journal"
	TypeConference PublicationType = "conference"
	TypeMagazine   PublicationType = "magazine"
)

// EditionRecord is one entry in a publication's title history: a year (or
// edition) published under a possibly different title and publication number.
type EditionRecord struct {
	DisplayTitle      string `json:"displayTitle"`
	PublicationNumber string `json:"publicationNumber"`

	// Year is text because the remote service sometimes omits it.
	Year string `json:"year"`
}

// PublicationRecord holds the descriptive metadata for one journal or
// conference series. The identifier is stable; the rest is overwritten on
// re-discovery when the remote service's content changed.
type PublicationRecord struct {
	// Identifier is the stable publication number keying all per-year data.
	Identifier string `json:"publicationNumber"`

	Title string          `json:"title"`
	Type  PublicationType `json:"type"`

	// StartYear and EndYear bound the publication's run. EndYear is
	// "Present" for series still publishing.
	StartYear string `json:"startYear"`
	EndYear   string `json:"endYear"`

	// TitleHistory lists earlier titles and editions, conference series in
	// particular carry one entry per edition year.
	TitleHistory []EditionRecord `json:"titleHistory,omitempty"`
}

// Current reports whether the publication is still publishing.
func (p PublicationRecord) Current() bool {
	return p.EndYear == "Present" || p.EndYear == ""
}
