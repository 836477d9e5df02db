// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pdiddy/bibharvest/pkg/types"
)

// KeyKind distinguishes high-confidence keys from heuristic ones, so audit
// code can tell a certain merge from a probable one.
type KeyKind string

const (
	// KeyStrong is built from service-assigned identifiers.
	KeyStrong KeyKind = "strong"

	// KeyFallback is a content hash used when no strong identifier exists.
	// Colliding fallback keys are a tolerated source of rare false merges.
	KeyFallback KeyKind = "fallback"
)

// Key is the natural key deduplicating articles within a publication-year.
type Key struct {
	Kind  KeyKind
	Value string
}

// KeyOf derives the natural key for an article: article number scoped by
// publication number when present, else DOI, else a hash of title,
// publication year, and start page.
func KeyOf(r types.ArticleRecord) Key {
	if r.ArticleNumber != "" {
		return Key{Kind: KeyStrong, Value: r.PublicationNumber + "#" + r.ArticleNumber}
	}
	if r.DOI != "" {
		return Key{Kind: KeyStrong, Value: "doi:" + r.DOI}
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s", r.Title, r.PublicationYear, r.StartPage))
	return Key{Kind: KeyFallback, Value: hex.EncodeToString(sum[:])}
}
