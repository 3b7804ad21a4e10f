// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/pkg/pointer"
)

func released(id int, day int) *catalog.Work {
	at := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	return &catalog.Work{ID: id, Title: "w", ReleaseDate: &at}
}

/*
TestNewWorks checks the recency list: canonical order, capped length, input
untouched.
*/
func TestNewWorks(t *testing.T) {
	works := []*catalog.Work{released(1, 1), released(2, 20), released(3, 10)}

	got := catalog.NewWorks(works, 2)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)

	// The input slice keeps its original order.
	assert.Equal(t, 1, works[0].ID)
}

/*
TestOnSaleWorks verifies the sale list filters by the open-window flag and
orders by discount depth.
*/
func TestOnSaleWorks(t *testing.T) {
	shallow := released(1, 5)
	shallow.OnSale = true
	shallow.MaxDiscountRate = pointer.To(10)

	deep := released(2, 1)
	deep.OnSale = true
	deep.MaxDiscountRate = pointer.To(50)

	fullPrice := released(3, 20)

	got := catalog.OnSaleWorks([]*catalog.Work{shallow, deep, fullPrice}, -1)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

/*
TestBargainWorks verifies the price ceiling filter and cheapest-first order.
*/
func TestBargainWorks(t *testing.T) {
	cheap := released(1, 1)
	cheap.LowestPrice = pointer.To(300)

	cheaper := released(2, 1)
	cheaper.LowestPrice = pointer.To(110)

	expensive := released(3, 1)
	expensive.LowestPrice = pointer.To(1200)

	unpriced := released(4, 1)

	got := catalog.BargainWorks([]*catalog.Work{cheap, cheaper, expensive, unpriced}, 500, -1)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

/*
TestHighRatedWorks verifies the rating threshold applies across either
marketplace and that review volume breaks rating ties.
*/
func TestHighRatedWorks(t *testing.T) {
	aboveOnFanza := released(1, 1)
	aboveOnFanza.Fanza.Rating = pointer.To(4.7)
	aboveOnFanza.Fanza.ReviewCount = pointer.To(10)

	aboveBusy := released(2, 1)
	aboveBusy.DLsite.Rating = pointer.To(4.7)
	aboveBusy.DLsite.ReviewCount = pointer.To(200)

	below := released(3, 1)
	below.DLsite.Rating = pointer.To(4.2)

	got := catalog.HighRatedWorks([]*catalog.Work{aboveOnFanza, aboveBusy, below}, 4.5, -1)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

/*
TestRankedWorks verifies per-marketplace ranking lists use that market's
position, best first.
*/
func TestRankedWorks(t *testing.T) {
	first := released(1, 1)
	first.DLsite.Rank = pointer.To(1)

	tenth := released(2, 1)
	tenth.DLsite.Rank = pointer.To(10)

	fanzaOnly := released(3, 1)
	fanzaOnly.Fanza.Rank = pointer.To(2)

	got := catalog.RankedWorks([]*catalog.Work{tenth, fanzaOnly, first}, catalog.DLsite, -1)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

/*
TestKindRankingWorks verifies the combined ranking: only works of the kind,
one-market ranks padded with a sentinel so they still order sensibly.
*/
func TestKindRankingWorks(t *testing.T) {
	voiceBoth := released(1, 1)
	voiceBoth.Genre = "音声作品"
	voiceBoth.DLsite.Rank = pointer.To(3)
	voiceBoth.Fanza.Rank = pointer.To(5)

	voiceSingle := released(2, 1)
	voiceSingle.Genre = "音声作品"
	voiceSingle.DLsite.Rank = pointer.To(1)

	game := released(3, 1)
	game.Genre = "RPG"
	game.DLsite.Rank = pointer.To(1)

	voiceUnranked := released(4, 1)
	voiceUnranked.Genre = "音声作品"

	got := catalog.KindRankingWorks([]*catalog.Work{voiceSingle, game, voiceBoth, voiceUnranked}, catalog.KindASMR, -1)

	// 3+5=8 beats 1+sentinel, so the dual-market work ranks first.
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

/*
TestView_WireShape pins the result-card JSON field mapping, including the
never-null array fields.
*/
func TestView_WireShape(t *testing.T) {
	saleEnd := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)

	w := released(42, 1)
	w.Title = "view work"
	w.CircleName = "circle"
	w.Category = "ASMR"
	w.DLsite.Price = pointer.To(700)
	w.DLsite.SaleEnd = &saleEnd
	w.OnSale = true
	w.MaxDiscountRate = pointer.To(30)

	v := w.View()

	assert.Equal(t, 42, v.ID)
	assert.Equal(t, "view work", v.Title)
	assert.Equal(t, "circle", v.CircleName)
	assert.Equal(t, "ASMR", v.Category)
	require.NotNil(t, v.PriceDLsite)
	assert.Equal(t, 700, *v.PriceDLsite)
	require.NotNil(t, v.SaleEndDateDLsite)
	assert.Equal(t, "2026-03-05T15:00:00Z", *v.SaleEndDateDLsite)
	assert.True(t, v.IsOnSale)

	// Arrays serialize as [] rather than null.
	assert.NotNil(t, v.Actors)
	assert.NotNil(t, v.Tags)
}
