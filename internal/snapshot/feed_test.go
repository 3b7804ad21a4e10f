// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package snapshot_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/snapshot"
	"github.com/taibuivan/nijidex/pkg/pointer"
)

var feedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

/*
TestBuildFeed checks the RSS shell, newest-first item order, the sale title
prefix and XML escaping of titles.
*/
func TestBuildFeed(t *testing.T) {
	newer := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	sale := &catalog.Work{
		ID:              1,
		Title:           "Sweet & Sour",
		CircleName:      "circleA",
		ReleaseDate:     &older,
		OnSale:          true,
		MaxDiscountRate: pointer.To(30),
		ThumbnailURL:    "https://img.example/1.jpg",
	}
	plain := &catalog.Work{
		ID:          2,
		Title:       "plain work",
		ReleaseDate: &newer,
	}

	feed := string(snapshot.BuildFeed([]*catalog.Work{sale, plain}, "https://nijidex.app", feedNow))

	assert.True(t, strings.HasPrefix(feed, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, feed, `<rss version="2.0"`)
	assert.Contains(t, feed, "<language>ja</language>")

	// Newest work first.
	assert.Less(t, strings.Index(feed, "plain work"), strings.Index(feed, "Sweet"))

	assert.Contains(t, feed, "【30%OFF】Sweet &amp; Sour")
	assert.Contains(t, feed, "<link>https://nijidex.app/works/1/</link>")
	assert.Contains(t, feed, "Sweet &amp; Sour / circleA")
	assert.Contains(t, feed, `<enclosure url="https://img.example/1.jpg"`)
}

/*
TestBuildSitemap checks static routes, per-work URLs and percent-encoded
dimension URLs.
*/
func TestBuildSitemap(t *testing.T) {
	release := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	works := []*catalog.Work{{ID: 5, Title: "w", ReleaseDate: &release}}
	cast := []catalog.NameCount{{Name: "花澤", WorkCount: 3}}
	tags := []catalog.NameCount{{Name: "耳かき", WorkCount: 7}}
	circles := []catalog.Circle{{ID: 1, Name: "circle a", WorkCount: 2}}

	sm := string(snapshot.BuildSitemap(works, cast, tags, circles, "https://nijidex.app", feedNow))

	assert.Contains(t, sm, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, sm, "<loc>https://nijidex.app/works/</loc>")
	assert.Contains(t, sm, "<loc>https://nijidex.app/works/5/</loc>")
	assert.Contains(t, sm, "<loc>https://nijidex.app/cv/%E8%8A%B1%E6%BE%A4/</loc>")
	assert.Contains(t, sm, "<loc>https://nijidex.app/tags/%E8%80%B3%E3%81%8B%E3%81%8D/</loc>")
	assert.Contains(t, sm, "<loc>https://nijidex.app/circles/circle%20a/</loc>")
	assert.Contains(t, sm, "<lastmod>2026-03-01</lastmod>")
}
