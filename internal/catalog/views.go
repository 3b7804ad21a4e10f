package catalog

import (
	"sort"

	"github.com/taibuivan/nijidex/pkg/pointer"
)

// Ranking view policy. The limits and cutoffs mirror what the storefront's
// landing sections display.
const (
	viewLimit        = 20
	bargainMaxPrice  = 500
	highRatedMinimum = 4.5
	unrankedSentinel = 9999
)

// RankedViews are the precomputed ranking lists embedded in the snapshot so
// the static renderer never re-derives them.
type RankedViews struct {
	NewWorks     []View `json:"newWorks"`
	OnSale       []View `json:"onSale"`
	Bargain      []View `json:"bargain"`
	HighRated    []View `json:"highRated"`
	DLsiteRank   []View `json:"dlsiteRank"`
	FanzaRank    []View `json:"fanzaRank"`
	VoiceRanking []View `json:"voiceRanking"`
	GameRanking  []View `json:"gameRanking"`
}

// BuildRankedViews derives all ranking lists from the normalized catalog.
// The input slice is not modified.
func BuildRankedViews(works []*Work) RankedViews {
	return RankedViews{
		NewWorks:     Views(NewWorks(works, viewLimit)),
		OnSale:       Views(OnSaleWorks(works, viewLimit)),
		Bargain:      Views(BargainWorks(works, bargainMaxPrice, viewLimit)),
		HighRated:    Views(HighRatedWorks(works, highRatedMinimum, viewLimit)),
		DLsiteRank:   Views(RankedWorks(works, DLsite, viewLimit)),
		FanzaRank:    Views(RankedWorks(works, Fanza, viewLimit)),
		VoiceRanking: Views(KindRankingWorks(works, KindASMR, viewLimit)),
		GameRanking:  Views(KindRankingWorks(works, KindGame, viewLimit)),
	}
}

// NewWorks returns the most recently released works.
func NewWorks(works []*Work, limit int) []*Work {
	sorted := sortedCopy(works, Newer)
	return truncate(sorted, limit)
}

// OnSaleWorks returns works with an open sale window, highest discount first.
func OnSaleWorks(works []*Work, limit int) []*Work {
	onSale := filter(works, func(w *Work) bool { return w.OnSale })
	sort.SliceStable(onSale, func(i, j int) bool {
		a, b := onSale[i], onSale[j]
		ra, rb := pointer.Val(a.MaxDiscountRate), pointer.Val(b.MaxDiscountRate)
		if ra != rb {
			return ra > rb
		}
		return Newer(a, b)
	})
	return truncate(onSale, limit)
}

// BargainWorks returns works whose lowest effective price is at or under
// maxPrice, cheapest first.
func BargainWorks(works []*Work, maxPrice, limit int) []*Work {
	cheap := filter(works, func(w *Work) bool {
		return w.LowestPrice != nil && *w.LowestPrice <= maxPrice
	})
	sort.SliceStable(cheap, func(i, j int) bool {
		a, b := cheap[i], cheap[j]
		if *a.LowestPrice != *b.LowestPrice {
			return *a.LowestPrice < *b.LowestPrice
		}
		return Newer(a, b)
	})
	return truncate(cheap, limit)
}

// HighRatedWorks returns works rated at or above minRating on some
// marketplace, ordered by best rating, then combined review volume, then
// recency.
func HighRatedWorks(works []*Work, minRating float64, limit int) []*Work {
	rated := filter(works, func(w *Work) bool {
		return pointer.Val(w.DLsite.Rating) >= minRating || pointer.Val(w.Fanza.Rating) >= minRating
	})
	sort.SliceStable(rated, func(i, j int) bool {
		a, b := rated[i], rated[j]
		if ba, bb := bestRating(a), bestRating(b); ba != bb {
			return ba > bb
		}
		if ra, rb := reviewVolume(a), reviewVolume(b); ra != rb {
			return ra > rb
		}
		return Newer(a, b)
	})
	return truncate(rated, limit)
}

// RankedWorks returns works carrying a ranking position on the given
// marketplace, best position first.
func RankedWorks(works []*Work, m Marketplace, limit int) []*Work {
	ranked := filter(works, func(w *Work) bool { return w.Market(m).Rank != nil })
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if *a.Market(m).Rank != *b.Market(m).Rank {
			return *a.Market(m).Rank < *b.Market(m).Rank
		}
		return Newer(a, b)
	})
	return truncate(ranked, limit)
}

// KindRankingWorks returns the combined-marketplace ranking for one content
// kind (asmr or game). A work must be ranked on at least one marketplace;
// the missing side counts as a large sentinel so single-market ranks still
// order sensibly.
func KindRankingWorks(works []*Work, kind string, limit int) []*Work {
	ranked := filter(works, func(w *Work) bool {
		return w.Kind() == kind && (w.DLsite.Rank != nil || w.Fanza.Rank != nil)
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if sa, sb := rankScore(a), rankScore(b); sa != sb {
			return sa < sb
		}
		return Newer(a, b)
	})
	return truncate(ranked, limit)
}

func rankScore(w *Work) int {
	return pointer.Fallback(w.DLsite.Rank, unrankedSentinel) + pointer.Fallback(w.Fanza.Rank, unrankedSentinel)
}

func bestRating(w *Work) float64 {
	return max(pointer.Val(w.DLsite.Rating), pointer.Val(w.Fanza.Rating))
}

func reviewVolume(w *Work) int {
	return pointer.Val(w.DLsite.ReviewCount) + pointer.Val(w.Fanza.ReviewCount)
}

func filter(works []*Work, keep func(*Work) bool) []*Work {
	out := make([]*Work, 0, len(works))
	for _, w := range works {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func sortedCopy(works []*Work, less func(a, b *Work) bool) []*Work {
	out := make([]*Work, len(works))
	copy(out, works)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func truncate(works []*Work, limit int) []*Work {
	if limit >= 0 && len(works) > limit {
		return works[:limit]
	}
	return works
}
