// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record maps raw search records into the canonical article schema
// and merges freshly fetched records with previously stored ones.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/bibharvest/internal/searchapi"
	"github.com/pdiddy/bibharvest/pkg/types"
)

// Normalize coerces one raw record into the canonical schema. It rejects
// records missing the identifying fields: publicationNumber, plus at least
// one of doi or articleNumber. Everything becomes text except the numeric
// author id; missing optionals become empty strings so the serialized
// field set is fixed.
func Normalize(raw searchapi.RawRecord) (types.ArticleRecord, error) {
	r := types.ArticleRecord{
		PublicationNumber: asText(raw["publicationNumber"]),
		DOI:               asText(raw["doi"]),
		ArticleNumber:     asText(raw["articleNumber"]),
		Title:             asText(raw["articleTitle"]),
		PublicationYear:   asText(raw["publicationYear"]),
		PublicationDate:   asText(raw["publicationDate"]),
		Volume:            asText(raw["volume"]),
		Issue:             asText(raw["issue"]),
		StartPage:         asText(raw["startPage"]),
		EndPage:           asText(raw["endPage"]),
		Publisher:         asText(raw["publisher"]),
		ContentType:       asText(raw["articleContentType"]),
		PublicationTitle:  asText(raw["publicationTitle"]),
		Authors:           []types.AuthorRecord{},
	}

	if r.PublicationNumber == "" {
		return types.ArticleRecord{}, fmt.Errorf("record has no publicationNumber")
	}
	if r.DOI == "" && r.ArticleNumber == "" {
		return types.ArticleRecord{}, fmt.Errorf("record %q has neither doi nor articleNumber", r.Title)
	}

	if authors, ok := raw["authors"].([]any); ok {
		for _, a := range authors {
			am, ok := a.(map[string]any)
			if !ok {
				continue
			}
			r.Authors = append(r.Authors, types.AuthorRecord{
				ID:            asInt64(am["id"]),
				PreferredName: asText(am["preferredName"]),
				FirstName:     asText(am["firstName"]),
				LastName:      asText(am["lastName"]),
			})
		}
	}

	return r, nil
}

// NormalizeAll normalizes a batch, dropping rejected records. The rejected
// count feeds the per-year audit line; a bad record never aborts its page.
func NormalizeAll(raws []searchapi.RawRecord) (records []types.ArticleRecord, rejected int) {
	for _, raw := range raws {
		r, err := Normalize(raw)
		if err != nil {
			rejected++
			continue
		}
		records = append(records, r)
	}
	return records, rejected
}

// asText coerces a decoded JSON value to its text form. Numbers lose any
// float artifacts ("1964", not "1964.000000").
func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// asInt64 coerces a decoded JSON value to an integer, 0 when absent or
// unparsable.
func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
