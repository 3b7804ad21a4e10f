// Package related produces the "related works" shelf for a work: a bounded,
// deduplicated, ranked set assembled from fallback tiers in fixed priority
// order — shared cast, then tag overlap, then same circle, then same
// category.
package related

import (
	"sort"

	"github.com/taibuivan/nijidex/internal/catalog"
)

// DefaultLimit is the shelf size the storefront renders: two cast-driven
// slots on top, two variety slots below.
const DefaultLimit = 4

// Recommender answers related-work queries from prebuilt dimension indexes.
//
// The indexes span the whole catalog, so construction must happen after
// normalization has finished for every work (a synchronization barrier in
// the pipeline). Recommendations themselves are independent per work and
// safe to compute concurrently.
type Recommender struct {
	byCast     map[string][]*catalog.Work
	byTag      map[string][]*catalog.Work
	byCircle   map[int][]*catalog.Work
	byCategory map[string][]*catalog.Work
}

// NewRecommender builds the cast/tag/circle/category indexes over the full
// normalized catalog. Every index list is held in canonical catalog order,
// which makes recommendation output reproducible run to run.
func NewRecommender(works []*catalog.Work) *Recommender {
	ordered := make([]*catalog.Work, len(works))
	copy(ordered, works)
	sort.SliceStable(ordered, func(i, j int) bool { return catalog.Newer(ordered[i], ordered[j]) })

	r := &Recommender{
		byCast:     make(map[string][]*catalog.Work),
		byTag:      make(map[string][]*catalog.Work),
		byCircle:   make(map[int][]*catalog.Work),
		byCategory: make(map[string][]*catalog.Work),
	}

	for _, w := range ordered {
		for _, name := range w.Cast {
			r.byCast[name] = append(r.byCast[name], w)
		}
		for _, tag := range w.Tags {
			r.byTag[tag] = append(r.byTag[tag], w)
		}
		if w.CircleID != nil {
			r.byCircle[*w.CircleID] = append(r.byCircle[*w.CircleID], w)
		}
		if w.Category != "" {
			r.byCategory[w.Category] = append(r.byCategory[w.Category], w)
		}
	}

	return r
}

// Recommend returns up to limit works related to target, never including
// the target itself and never repeating a work.
//
// The first half of the shelf comes from works sharing a cast member,
// newest first. The second half is filled by tag overlap (most shared tags
// first, newer on ties), falling back to the target's circle and finally
// its category when a tier under-fills. If the cast tier itself came up
// short, remaining slots are topped up from the category pool. Fewer than
// limit results simply means the catalog has nothing more to offer.
func (r *Recommender) Recommend(target *catalog.Work, limit int) []*catalog.Work {
	if limit <= 0 {
		return nil
	}
	half := limit / 2

	seen := map[int]bool{target.ID: true}

	// Tier 1: shared cast, recency order.
	castPicks := make([]*catalog.Work, 0, half)
	for _, w := range r.castCandidates(target) {
		if len(castPicks) >= half {
			break
		}
		if !seen[w.ID] {
			seen[w.ID] = true
			castPicks = append(castPicks, w)
		}
	}

	// Tiers 2-4 fill the second half.
	others := make([]*catalog.Work, 0, half)

	for _, w := range r.tagCandidates(target) {
		if len(others) >= half {
			break
		}
		if !seen[w.ID] {
			seen[w.ID] = true
			others = append(others, w)
		}
	}

	if len(others) < half && target.CircleID != nil {
		for _, w := range r.byCircle[*target.CircleID] {
			if len(others) >= half {
				break
			}
			if !seen[w.ID] {
				seen[w.ID] = true
				others = append(others, w)
			}
		}
	}

	if len(others) < half && target.Category != "" {
		for _, w := range r.byCategory[target.Category] {
			if len(others) >= half {
				break
			}
			if !seen[w.ID] {
				seen[w.ID] = true
				others = append(others, w)
			}
		}
	}

	result := make([]*catalog.Work, 0, limit)
	result = append(result, castPicks...)
	for _, w := range others {
		if len(result) >= limit {
			break
		}
		result = append(result, w)
	}

	// Top up from the category pool when the cast tier under-filled.
	if len(result) < limit && target.Category != "" {
		for _, w := range r.byCategory[target.Category] {
			if len(result) >= limit {
				break
			}
			if !seen[w.ID] {
				seen[w.ID] = true
				result = append(result, w)
			}
		}
	}

	return result
}

// castCandidates merges the per-name cast lists for the target's cast,
// deduplicated, in canonical order.
func (r *Recommender) castCandidates(target *catalog.Work) []*catalog.Work {
	return mergeCandidates(target, r.byCast, target.Cast, nil)
}

// tagCandidates merges the per-tag lists for the target's tags and ranks
// them by descending overlap count, canonical order on ties.
func (r *Recommender) tagCandidates(target *catalog.Work) []*catalog.Work {
	overlap := make(map[int]int)
	merged := mergeCandidates(target, r.byTag, target.Tags, overlap)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if overlap[a.ID] != overlap[b.ID] {
			return overlap[a.ID] > overlap[b.ID]
		}
		return catalog.Newer(a, b)
	})
	return merged
}

// mergeCandidates unions the index lists for the given keys, excluding the
// target, keeping first-seen (canonical) order. When counts is non-nil it
// receives the number of lists each work appeared in, i.e. the number of
// shared dimension values.
func mergeCandidates(target *catalog.Work, index map[string][]*catalog.Work, keys []string, counts map[int]int) []*catalog.Work {
	merged := make([]*catalog.Work, 0)
	added := make(map[int]bool)

	for _, key := range keys {
		for _, w := range index[key] {
			if w.ID == target.ID {
				continue
			}
			if counts != nil {
				counts[w.ID]++
			}
			if !added[w.ID] {
				added[w.ID] = true
				merged = append(merged, w)
			}
		}
	}

	// Union order is insertion order across per-key lists, which is only
	// canonical per key. Restore the global canonical order.
	sort.SliceStable(merged, func(i, j int) bool { return catalog.Newer(merged[i], merged[j]) })
	return merged
}
