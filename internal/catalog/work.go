// Package catalog defines the canonical in-memory representation of the
// works catalog and the read-only queries that hydrate it from the source
// relational store.
//
// Everything downstream of normalization (search index, pagination planner,
// recommender, snapshot writer) consumes []*Work and treats it as immutable.
package catalog

import (
	"strings"
	"time"
)

// Marketplace identifies one of the external sales channels a work may be
// listed on. Each marketplace carries independent price, discount and
// rating fields.
type Marketplace string

const (
	DLsite Marketplace = "dlsite"
	Fanza  Marketplace = "fanza"
)

// Marketplaces is the fixed priority order. Price ties between marketplaces
// resolve to the earlier entry, so the choice is stable across runs.
var Marketplaces = [...]Marketplace{DLsite, Fanza}

// Work classification values.
const (
	KindASMR = "asmr"
	KindGame = "game"
)

// Listing holds one marketplace's commercial and rating fields for a work.
// All fields are nullable in the source store.
type Listing struct {
	ProductID    string
	URL          string
	Price        *int
	DiscountRate *int // percent, 0-100
	SaleEnd      *time.Time
	Rating       *float64 // 0-5
	ReviewCount  *int
	Rank         *int // marketplace ranking position, 1 is best
}

// Work is the canonical representation of one purchasable work.
//
// Cast and Tags are denormalized many-to-many arrays owned by the work;
// after normalization they are never mutated, which keeps grouping a pure
// projection.
type Work struct {
	ID           int
	Title        string
	CircleID     *int
	CircleName   string
	Genre        string
	Category     string
	ReleaseDate  *time.Time
	ThumbnailURL string
	SampleImages []string
	Cast         []string
	Tags         []string

	DurationMinutes *int
	CGCount         *int

	DLsite Listing
	Fanza  Listing

	// Derived pricing aggregates. Recomputed from the listings during
	// normalization, never trusted from the source row.
	LowestPrice     *int
	CheapestMarket  Marketplace // empty when LowestPrice is nil
	MaxDiscountRate *int        // highest active discount, nil when none
	OnSale          bool
}

// Market returns the listing for the given marketplace.
func (w *Work) Market(m Marketplace) *Listing {
	if m == Fanza {
		return &w.Fanza
	}
	return &w.DLsite
}

// Kind classifies a work as ASMR or game content.
//
// Genre is authoritative when present; category is consulted only when the
// genre is absent. This precedence holds everywhere downstream.
func (w *Work) Kind() string {
	if w.Genre != "" {
		if strings.Contains(w.Genre, "ボイス") || strings.Contains(w.Genre, "ASMR") || strings.Contains(w.Genre, "音声") {
			return KindASMR
		}
		return KindGame
	}
	if w.Category == "ASMR" {
		return KindASMR
	}
	return KindGame
}

// Newer reports whether a sorts before b in the canonical catalog order:
// release date descending with missing dates last, ties broken by
// descending id. Every exported ordering derives from this comparison, so
// output is reproducible run to run.
func Newer(a, b *Work) bool {
	switch {
	case a.ReleaseDate == nil && b.ReleaseDate == nil:
		return a.ID > b.ID
	case a.ReleaseDate == nil:
		return false
	case b.ReleaseDate == nil:
		return true
	case a.ReleaseDate.Equal(*b.ReleaseDate):
		return a.ID > b.ID
	default:
		return a.ReleaseDate.After(*b.ReleaseDate)
	}
}

// View is the denormalized result-card projection written to page files and
// related-work artifacts. The JSON shape is the wire contract with the
// static renderer and the runtime loader.
type View struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	CircleName         string   `json:"circleName"`
	ThumbnailURL       string   `json:"thumbnailUrl"`
	PriceDLsite        *int     `json:"priceDlsite"`
	PriceFanza         *int     `json:"priceFanza"`
	DiscountRateDLsite *int     `json:"discountRateDlsite"`
	DiscountRateFanza  *int     `json:"discountRateFanza"`
	SaleEndDateDLsite  *string  `json:"saleEndDateDlsite"`
	SaleEndDateFanza   *string  `json:"saleEndDateFanza"`
	RatingDLsite       *float64 `json:"ratingDlsite"`
	RatingFanza        *float64 `json:"ratingFanza"`
	ReviewCountDLsite  *int     `json:"reviewCountDlsite"`
	ReviewCountFanza   *int     `json:"reviewCountFanza"`
	IsOnSale           bool     `json:"isOnSale"`
	MaxDiscountRate    *int     `json:"maxDiscountRate"`
	Category           string   `json:"category"`
	Actors             []string `json:"actors"`
	Tags               []string `json:"aiTags"`
}

// View projects the work into its result-card shape.
func (w *Work) View() View {
	return View{
		ID:                 w.ID,
		Title:              w.Title,
		CircleName:         w.CircleName,
		ThumbnailURL:       w.ThumbnailURL,
		PriceDLsite:        w.DLsite.Price,
		PriceFanza:         w.Fanza.Price,
		DiscountRateDLsite: w.DLsite.DiscountRate,
		DiscountRateFanza:  w.Fanza.DiscountRate,
		SaleEndDateDLsite:  formatTime(w.DLsite.SaleEnd),
		SaleEndDateFanza:   formatTime(w.Fanza.SaleEnd),
		RatingDLsite:       w.DLsite.Rating,
		RatingFanza:        w.Fanza.Rating,
		ReviewCountDLsite:  w.DLsite.ReviewCount,
		ReviewCountFanza:   w.Fanza.ReviewCount,
		IsOnSale:           w.OnSale,
		MaxDiscountRate:    w.MaxDiscountRate,
		Category:           w.Category,
		Actors:             emptyIfNil(w.Cast),
		Tags:               emptyIfNil(w.Tags),
	}
}

// Views projects a slice of works, preserving order. The result is never
// nil so page artifacts serialize as [] rather than null.
func Views(works []*Work) []View {
	views := make([]View, 0, len(works))
	for _, w := range works {
		views = append(views, w.View())
	}
	return views
}

// ReleaseDateString returns the release date in ISO date form, or "" when
// unknown.
func (w *Work) ReleaseDateString() string {
	if w.ReleaseDate == nil {
		return ""
	}
	return w.ReleaseDate.Format(time.DateOnly)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
