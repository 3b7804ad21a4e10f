// Package search projects the catalog into the client-held search index.
//
// The whole index is fetched once by the browser and queried locally, so the
// record shape is optimized for payload size: single-letter field names and
// omitted optionals instead of nulls. The JSON field names are a wire
// contract with the front end and must not change casually.
package search

import (
	"time"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/pkg/pointer"
)

// Record is one entry of the search index.
type Record struct {
	ID        int      `json:"id"`
	Title     string   `json:"t"`
	Circle    string   `json:"c"`
	Cast      []string `json:"cv"`
	Tags      []string `json:"tg"`
	Price     int      `json:"p"`  // current lowest effective price
	ListPrice int      `json:"dp"` // pre-discount price, DLsite preferred
	Discount  *int     `json:"dr,omitempty"`
	Thumbnail string   `json:"img,omitempty"`
	Kind      string   `json:"cat"`
	Duration  *int     `json:"dur,omitempty"` // ASMR works only
	CGCount   *int     `json:"cg,omitempty"`  // game works only
	Released  string   `json:"rel"`
	OnDLsite  bool     `json:"dl"`
	OnFanza   bool     `json:"fa"`
	RankDL    *int     `json:"dlRank,omitempty"`
	RankFanza *int     `json:"faRank,omitempty"`
	Rating    *float64 `json:"rt,omitempty"`
	Reviews   *int     `json:"rc,omitempty"`
	SaleEnd   string   `json:"saleEnd,omitempty"`
}

// BuildIndex projects the catalog into search records, preserving the input
// order. Callers may re-sort; the index itself carries no ordering promise
// beyond matching its input.
func BuildIndex(works []*catalog.Work) []Record {
	records := make([]Record, 0, len(works))
	for _, w := range works {
		records = append(records, newRecord(w))
	}
	return records
}

func newRecord(w *catalog.Work) Record {
	kind := w.Kind()

	// Current price falls back through lowest -> DLsite -> FANZA -> 0;
	// the original (pre-discount) price prefers DLsite.
	price := pointer.Val(pointer.Coalesce(w.LowestPrice, w.DLsite.Price, w.Fanza.Price))
	listPrice := pointer.Fallback(pointer.Coalesce(w.DLsite.Price, w.Fanza.Price), price)

	r := Record{
		ID:        w.ID,
		Title:     w.Title,
		Circle:    w.CircleName,
		Cast:      clone(w.Cast),
		Tags:      clone(w.Tags),
		Price:     price,
		ListPrice: listPrice,
		Discount:  w.MaxDiscountRate,
		Thumbnail: w.ThumbnailURL,
		Kind:      kind,
		Released:  w.ReleaseDateString(),
		OnDLsite:  w.DLsite.ProductID != "",
		OnFanza:   w.Fanza.ProductID != "",
		RankDL:    w.DLsite.Rank,
		RankFanza: w.Fanza.Rank,
		Rating:    pointer.Coalesce(w.DLsite.Rating, w.Fanza.Rating),
		Reviews:   pointer.Coalesce(w.DLsite.ReviewCount, w.Fanza.ReviewCount),
	}

	if kind == catalog.KindASMR {
		r.Duration = w.DurationMinutes
	}
	if kind == catalog.KindGame {
		r.CGCount = w.CGCount
	}

	if end := pointer.Coalesce(w.DLsite.SaleEnd, w.Fanza.SaleEnd); end != nil {
		r.SaleEnd = end.UTC().Format(time.RFC3339)
	}

	return r
}

// clone keeps the index detached from the catalog's owned arrays and makes
// empty fields serialize as [] instead of null.
func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
