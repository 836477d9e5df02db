// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawRecord is one article record as delivered by the remote service.
// Field shapes vary across years of indexed content, so records stay
// untyped until the normalizer coerces them into the canonical schema.
type RawRecord map[string]any

// ArticlePage is one page of an article search result.
type ArticlePage struct {
	Records []RawRecord

	// TotalRecords is authoritative for pagination termination.
	TotalRecords int
	TotalPages   int
}

// Text is a string that also accepts JSON numbers and null when decoding.
// The remote service is inconsistent about whether publication numbers and
// years arrive quoted.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("text field: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// PublicationTitleHistory is one historical title entry on a publication
// browse record.
type PublicationTitleHistory struct {
	DisplayTitle      string `json:"displayTitle"`
	PublicationNumber Text   `json:"publicationNumber"`
	StartYear         Text   `json:"startYear"`
	EndYear           Text   `json:"endYear"`
}

// PublicationResult is one record of a publication browse page.
type PublicationResult struct {
	Title             string `json:"title"`
	DisplayTitle      string `json:"displayTitle"`
	PublicationNumber Text   `json:"publicationNumber"`

	// AllYears is the service's textual run range, e.g. "1884 - Present".
	AllYears string `json:"allYears"`

	ContentType string `json:"contentType"`

	// Parent fields group conference editions under their series.
	ParentPublicationNumber Text   `json:"parentPublicationNumber"`
	ParentTitle             string `json:"parentTitle"`

	TitleHistory []PublicationTitleHistory `json:"titleHistory"`
}

// PublicationPage is one page of a publication browse result.
type PublicationPage struct {
	Records      []PublicationResult `json:"records"`
	TotalRecords int                 `json:"totalRecords"`
	TotalPages   int                 `json:"totalPages"`
}
