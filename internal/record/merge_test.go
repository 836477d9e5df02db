// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"testing"

	"github.com/pdiddy/bibharvest/pkg/types"
)

func art(pub, num, title string) types.ArticleRecord {
	return types.ArticleRecord{
		PublicationNumber: pub,
		ArticleNumber:     num,
		Title:             title,
	}
}

func TestMergeCounts(t *testing.T) {
	// |A| + |B| - k records for k shared keys.
	existing := []types.ArticleRecord{
		art("200", "A1", "one"),
		art("200", "A2", "two"),
		art("200", "A3", "three"),
	}
	fresh := []types.ArticleRecord{
		art("200", "A2", "two revised"),
		art("200", "A4", "four"),
	}

	merged, stats := Merge(existing, fresh)
	if len(merged) != 4 {
		t.Fatalf("len(merged) = %d, want 4", len(merged))
	}
	if stats.Added != 1 || stats.Updated != 1 {
		t.Errorf("stats = %+v, want Added 1 Updated 1", stats)
	}
}

func TestMergeNewerWinsInPlace(t *testing.T) {
	existing := []types.ArticleRecord{
		art("200", "A1", "one"),
		art("200", "A2", "old title"),
		art("200", "A3", "three"),
	}
	fresh := []types.ArticleRecord{art("200", "A2", "corrected title")}

	merged, _ := Merge(existing, fresh)

	// Position preserved, content replaced.
	if merged[1].Title != "corrected title" {
		t.Errorf("merged[1].Title = %q", merged[1].Title)
	}
	if merged[0].Title != "one" || merged[2].Title != "three" {
		t.Errorf("neighbors disturbed: %q, %q", merged[0].Title, merged[2].Title)
	}
}

func TestMergeAppendsNewInFetchOrder(t *testing.T) {
	existing := []types.ArticleRecord{art("200", "A1", "one")}
	fresh := []types.ArticleRecord{
		art("200", "A3", "three"),
		art("200", "A2", "two"),
	}

	merged, stats := Merge(existing, fresh)
	if stats.Added != 2 {
		t.Fatalf("Added = %d, want 2", stats.Added)
	}
	if merged[1].ArticleNumber != "A3" || merged[2].ArticleNumber != "A2" {
		t.Errorf("append order not fetch order: %q then %q",
			merged[1].ArticleNumber, merged[2].ArticleNumber)
	}
}

func TestMergeEmptyExisting(t *testing.T) {
	fresh := []types.ArticleRecord{
		art("200", "A1", "one"),
		art("200", "A2", "two"),
	}
	merged, stats := Merge(nil, fresh)
	if len(merged) != 2 || stats.Added != 2 || stats.Updated != 0 {
		t.Errorf("merged = %d records, stats = %+v", len(merged), stats)
	}
}

func TestMergeDuplicateWithinFreshBatch(t *testing.T) {
	fresh := []types.ArticleRecord{
		art("200", "A1", "first sighting"),
		art("200", "A1", "second sighting"),
	}
	merged, stats := Merge(nil, fresh)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].Title != "second sighting" {
		t.Errorf("later duplicate should win: %q", merged[0].Title)
	}
	if stats.Added != 1 || stats.Updated != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMergeFallbackCollisionCounted(t *testing.T) {
	weak := types.ArticleRecord{
		PublicationNumber: "200",
		Title:             "Untracked Note",
		PublicationYear:   "1964",
		StartPage:         "5",
	}
	merged, stats := Merge([]types.ArticleRecord{weak}, []types.ArticleRecord{weak})
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if stats.FallbackMerges != 1 {
		t.Errorf("FallbackMerges = %d, want 1", stats.FallbackMerges)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := []types.ArticleRecord{art("200", "A1", "original")}
	fresh := []types.ArticleRecord{art("200", "A1", "replacement")}

	Merge(existing, fresh)
	if existing[0].Title != "original" {
		t.Errorf("existing slice mutated: %q", existing[0].Title)
	}
}
