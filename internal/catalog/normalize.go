package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Normalization failures for rows violating required invariants. Rows
// failing with one of these are dropped and counted, never fatal to a run.
var (
	ErrMissingID    = errors.New("catalog: row has no id")
	ErrMissingTitle = errors.New("catalog: row has no title")
	// ErrUnavailable marks a delisted row. It is filtered silently rather
	// than counted as a data quality problem.
	ErrUnavailable = errors.New("catalog: row is unavailable")
)

// WorkRow mirrors one raw row of the works query (works LEFT JOIN circles).
// Scalar columns are nullable pointers; array columns arrive decoded except
// SampleImages, which the store keeps as a raw JSON string.
type WorkRow struct {
	ID          *int
	CircleID    *int
	CircleName  *string
	Title       *string
	Genre       *string
	Category    *string
	ReleaseDate *time.Time

	DLsiteProductID *string
	DLsiteURL       *string
	FanzaProductID  *string
	FanzaURL        *string

	ThumbnailURL *string
	SampleImages *string // JSON-encoded array

	PriceDLsite        *int
	PriceFanza         *int
	DiscountRateDLsite *int
	DiscountRateFanza  *int
	SaleEndDLsite      *time.Time
	SaleEndFanza       *time.Time

	RankDLsite *int
	RankFanza  *int

	RatingDLsite      *float64
	RatingFanza       *float64
	ReviewCountDLsite *int
	ReviewCountFanza  *int

	CastNames []string
	Tags      []string

	DurationMinutes *int
	CGCount         *int

	Available bool
}

// NormalizeRow converts one raw row into a canonical [Work].
//
// It returns ErrUnavailable for delisted rows and ErrMissingID/ErrMissingTitle
// for rows violating required invariants; the caller drops such rows and
// keeps going. Optional fields never fail: malformed JSON array columns
// decode to an empty list.
//
// The derived pricing aggregates are recomputed here relative to now, so a
// stored aggregate that drifted from the per-marketplace columns can never
// leak into an export.
func NormalizeRow(row WorkRow, now time.Time) (*Work, error) {
	if !row.Available {
		return nil, ErrUnavailable
	}
	if row.ID == nil {
		return nil, ErrMissingID
	}
	if row.Title == nil || strings.TrimSpace(*row.Title) == "" {
		return nil, ErrMissingTitle
	}

	w := &Work{
		ID:           *row.ID,
		Title:        strings.TrimSpace(*row.Title),
		CircleID:     row.CircleID,
		CircleName:   deref(row.CircleName),
		Genre:        deref(row.Genre),
		Category:     deref(row.Category),
		ReleaseDate:  row.ReleaseDate,
		ThumbnailURL: deref(row.ThumbnailURL),
		SampleImages: decodeStringArray(row.SampleImages),
		Cast:         compactStrings(row.CastNames),
		Tags:         compactStrings(row.Tags),

		DurationMinutes: row.DurationMinutes,
		CGCount:         row.CGCount,

		DLsite: Listing{
			ProductID:    deref(row.DLsiteProductID),
			URL:          deref(row.DLsiteURL),
			Price:        row.PriceDLsite,
			DiscountRate: row.DiscountRateDLsite,
			SaleEnd:      row.SaleEndDLsite,
			Rating:       row.RatingDLsite,
			ReviewCount:  row.ReviewCountDLsite,
			Rank:         row.RankDLsite,
		},
		Fanza: Listing{
			ProductID:    deref(row.FanzaProductID),
			URL:          deref(row.FanzaURL),
			Price:        row.PriceFanza,
			DiscountRate: row.DiscountRateFanza,
			SaleEnd:      row.SaleEndFanza,
			Rating:       row.RatingFanza,
			ReviewCount:  row.ReviewCountFanza,
			Rank:         row.RankFanza,
		},
	}

	w.RefreshPricing(now)

	return w, nil
}

// decodeStringArray parses a JSON-encoded string array column defensively.
// Malformed JSON yields an empty list, never an error that would abort the
// whole run.
func decodeStringArray(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		return []string{}
	}
	return compactStrings(values)
}

// compactStrings trims entries and removes blanks while preserving order.
func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
