// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import "github.com/pdiddy/bibharvest/pkg/types"

// MergeStats summarizes one merge for the audit log.
type MergeStats struct {
	// Added counts genuinely new records appended to the file.
	Added int `json:"added" yaml:"added"`

	// Updated counts existing records replaced in place by a newer fetch.
	Updated int `json:"updated" yaml:"updated"`

	// FallbackMerges counts collisions decided on a fallback (content-hash)
	// key rather than a service identifier.
	FallbackMerges int `json:"fallback_merges" yaml:"fallback_merges"`

	// Rejected counts raw records the normalizer refused.
	Rejected int `json:"rejected" yaml:"rejected"`
}

// Merge combines freshly fetched records with the previously stored ones
// for the same publication-year. On a key collision the fresh record wins,
// replacing the stored one in place; new records are appended in fetch
// order. Stored ordering is otherwise preserved, so repeated harvests of
// unchanged years diff cleanly.
func Merge(existing, fresh []types.ArticleRecord) ([]types.ArticleRecord, MergeStats) {
	merged := make([]types.ArticleRecord, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[KeyOf(r).Value] = i
	}

	var stats MergeStats
	for _, r := range fresh {
		key := KeyOf(r)
		if i, ok := index[key.Value]; ok {
			merged[i] = r
			stats.Updated++
			if key.Kind == KeyFallback {
				stats.FallbackMerges++
			}
			continue
		}
		index[key.Value] = len(merged)
		merged = append(merged, r)
		stats.Added++
	}
	return merged, stats
}
