// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorRecord identifies one author of an article, in byline order.
// Authors are owned by their article; the same author id may recur
// across articles without any cross-article linking.
type AuthorRecord struct {
	// ID is the remote service's numeric author id, 0 when absent.
	ID int64 `json:"id"`

	// PreferredName is the display form of the author name.
	PreferredName string `json:"preferredName"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ArticleRecord is the canonical schema for one article within a
// publication-year. Every field is always present in the serialized form
// (absent values are empty strings) so downstream consumers can rely on a
// fixed field set.
type ArticleRecord struct {
	// PublicationNumber identifies the publication the article belongs to.
	PublicationNumber string `json:"publicationNumber"`

	// DOI is the Digital Object Identifier, empty when the service has none.
	DOI string `json:"doi"`

	// ArticleNumber is the service's per-article identifier.
	ArticleNumber string `json:"articleNumber"`

	Title string `json:"articleTitle"`

	// PublicationYear and PublicationDate are kept as text, as delivered.
	PublicationYear string `json:"publicationYear"`
	PublicationDate string `json:"publicationDate"`

	Volume string `json:"volume"`
	Issue  string `json:"issue"`

	// StartPage and EndPage stay text to tolerate labels like "xii" or "S3".
	StartPage string `json:"startPage"`
	EndPage   string `json:"endPage"`

	Publisher        string `json:"publisher"`
	ContentType      string `json:"articleContentType"`
	PublicationTitle string `json:"publicationTitle"`

	// Authors preserves the remote service's ordering.
	Authors []AuthorRecord `json:"authors"`
}
