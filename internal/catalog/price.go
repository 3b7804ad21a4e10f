package catalog

import (
	"math"
	"time"

	"github.com/taibuivan/nijidex/pkg/pointer"
)

// Effective returns the price a buyer pays on one marketplace at the given
// instant, or nil when the marketplace has no list price.
//
// A discount applies only while its sale window is open: a discount with no
// end date is active indefinitely, and a discount whose end date has passed
// reverts the price to list. The discounted amount is rounded half-up on
// the final integer currency unit.
func Effective(l Listing, now time.Time) *int {
	if l.Price == nil {
		return nil
	}
	if !saleActive(l, now) {
		return pointer.To(*l.Price)
	}
	rate := *l.DiscountRate
	discounted := math.Floor(float64(*l.Price)*float64(100-rate)/100.0 + 0.5)
	return pointer.To(int(discounted))
}

// saleActive reports whether the listing has a discount whose window is
// still open at now. A past-dated end with the rate still set is stale data
// and counts as not on sale.
func saleActive(l Listing, now time.Time) bool {
	if pointer.Val(l.DiscountRate) <= 0 {
		return false
	}
	return l.SaleEnd == nil || l.SaleEnd.After(now)
}

// RefreshPricing recomputes the derived pricing aggregates from the
// per-marketplace listings.
//
// Invariants maintained:
//   - LowestPrice is the minimum effective price across marketplaces with a
//     list price, nil iff no marketplace has one.
//   - CheapestMarket names the marketplace achieving LowestPrice; equal
//     effective prices resolve in Marketplaces order (DLsite before FANZA).
//   - OnSale is true iff some marketplace has an open discount window.
//   - MaxDiscountRate is the highest active discount rate, nil when none.
func (w *Work) RefreshPricing(now time.Time) {
	w.LowestPrice = nil
	w.CheapestMarket = ""
	w.OnSale = false
	w.MaxDiscountRate = nil

	for _, m := range Marketplaces {
		l := w.Market(m)

		if price := Effective(*l, now); price != nil {
			if w.LowestPrice == nil || *price < *w.LowestPrice {
				w.LowestPrice = price
				w.CheapestMarket = m
			}
		}

		if saleActive(*l, now) {
			w.OnSale = true
			if w.MaxDiscountRate == nil || *l.DiscountRate > *w.MaxDiscountRate {
				w.MaxDiscountRate = pointer.To(*l.DiscountRate)
			}
		}
	}
}
