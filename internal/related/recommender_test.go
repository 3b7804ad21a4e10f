// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package related_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/related"
	"github.com/taibuivan/nijidex/pkg/pointer"
)

func work(id, day int) *catalog.Work {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	return &catalog.Work{
		ID:          id,
		Title:       fmt.Sprintf("work-%d", id),
		ReleaseDate: &at,
	}
}

func ids(works []*catalog.Work) []int {
	out := make([]int, 0, len(works))
	for _, w := range works {
		out = append(out, w.ID)
	}
	return out
}

/*
TestRecommend_TierPriority walks the full fallback ladder: cast fills the
top half, tag overlap the bottom half, circle and category only when the
earlier tiers under-fill.
*/
func TestRecommend_TierPriority(t *testing.T) {
	target := work(1, 10)
	target.Cast = []string{"voiceA"}
	target.Tags = []string{"healing", "whisper"}
	target.CircleID = pointer.To(100)
	target.Category = "ASMR"

	sharedCast := work(2, 9)
	sharedCast.Cast = []string{"voiceA"}

	sharedCastOlder := work(3, 8)
	sharedCastOlder.Cast = []string{"voiceA"}

	bothTags := work(4, 1)
	bothTags.Tags = []string{"healing", "whisper"}

	oneTag := work(5, 9)
	oneTag.Tags = []string{"healing"}

	sameCircle := work(6, 9)
	sameCircle.CircleID = pointer.To(100)

	sameCategory := work(7, 9)
	sameCategory.Category = "ASMR"

	all := []*catalog.Work{target, sharedCast, sharedCastOlder, bothTags, oneTag, sameCircle, sameCategory}
	r := related.NewRecommender(all)

	got := r.Recommend(target, related.DefaultLimit)

	// Cast picks newest-first; tag overlap outranks recency in the second
	// half, so the two-tag match beats the newer one-tag match.
	assert.Equal(t, []int{2, 3, 4, 5}, ids(got))
}

/*
TestRecommend_Fallbacks verifies circle and category kick in only when the
tag tier under-fills, and the final category top-up covers a short cast
tier.
*/
func TestRecommend_Fallbacks(t *testing.T) {
	t.Run("circle_fills_second_half", func(t *testing.T) {
		target := work(1, 10)
		target.CircleID = pointer.To(7)

		sibling := work(2, 9)
		sibling.CircleID = pointer.To(7)

		r := related.NewRecommender([]*catalog.Work{target, sibling})
		got := r.Recommend(target, related.DefaultLimit)

		assert.Equal(t, []int{2}, ids(got))
	})

	t.Run("category_tops_up_short_cast_tier", func(t *testing.T) {
		target := work(1, 10)
		target.Category = "ASMR"

		peers := make([]*catalog.Work, 0, 5)
		for i := 2; i <= 6; i++ {
			p := work(i, 10-i)
			p.Category = "ASMR"
			peers = append(peers, p)
		}

		r := related.NewRecommender(append([]*catalog.Work{target}, peers...))
		got := r.Recommend(target, related.DefaultLimit)

		// No cast and no tags: half from the category tier, topped up to
		// the full limit from the same pool.
		assert.Equal(t, []int{2, 3, 4, 5}, ids(got))
	})

	t.Run("sparse_catalog_returns_short_shelf", func(t *testing.T) {
		target := work(1, 10)
		lone := work(2, 9)
		lone.Category = "other"

		r := related.NewRecommender([]*catalog.Work{target, lone})
		assert.Empty(t, r.Recommend(target, related.DefaultLimit))
	})
}

/*
TestRecommend_NeverTargetNeverDuplicates checks the shelf invariants when a
candidate qualifies through several tiers at once.
*/
func TestRecommend_NeverTargetNeverDuplicates(t *testing.T) {
	target := work(1, 10)
	target.Cast = []string{"voiceA"}
	target.Tags = []string{"healing"}
	target.Category = "ASMR"

	// Qualifies via cast, tags and category simultaneously.
	everything := work(2, 9)
	everything.Cast = []string{"voiceA"}
	everything.Tags = []string{"healing"}
	everything.Category = "ASMR"

	other := work(3, 8)
	other.Category = "ASMR"

	r := related.NewRecommender([]*catalog.Work{target, everything, other})
	got := r.Recommend(target, related.DefaultLimit)

	require.Equal(t, []int{2, 3}, ids(got))
	assert.NotContains(t, ids(got), target.ID)
}

/*
TestRecommend_Deterministic pins reproducibility: identical input in any
order yields the identical shelf.
*/
func TestRecommend_Deterministic(t *testing.T) {
	build := func(order []int) []int {
		works := make([]*catalog.Work, 0, 8)
		for _, id := range order {
			w := work(id, id%3)
			w.Tags = []string{"shared"}
			works = append(works, w)
		}
		r := related.NewRecommender(works)
		return ids(r.Recommend(works[0], related.DefaultLimit))
	}

	first := build([]int{5, 2, 8, 3, 6, 7, 4})
	second := build([]int{5, 4, 7, 6, 3, 8, 2})

	assert.Equal(t, first, second)
}

/*
TestRecommend_LimitHandling checks the limit cap and the degenerate
non-positive limit.
*/
func TestRecommend_LimitHandling(t *testing.T) {
	target := work(1, 10)
	target.Tags = []string{"shared"}

	works := []*catalog.Work{target}
	for i := 2; i <= 10; i++ {
		w := work(i, 10-i)
		w.Tags = []string{"shared"}
		works = append(works, w)
	}

	r := related.NewRecommender(works)

	assert.Len(t, r.Recommend(target, 2), 1)
	assert.Nil(t, r.Recommend(target, 0))
	assert.Nil(t, r.Recommend(target, -1))
}
