// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package loader_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/loader"
	"github.com/taibuivan/nijidex/internal/pages"
	"github.com/taibuivan/nijidex/internal/search"
	"github.com/taibuivan/nijidex/internal/snapshot"
)

func pageViews(from, to int) []catalog.View {
	views := make([]catalog.View, 0, to-from+1)
	for id := from; id <= to; id++ {
		views = append(views, catalog.View{ID: id, Title: fmt.Sprintf("work-%d", id)})
	}
	return views
}

// snapshotServer serves a search index and the page files of one tag group.
func snapshotServer(t *testing.T, group map[int][]catalog.View) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/"+snapshot.SearchIndexFile, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]search.Record{{ID: 1, Title: "indexed"}})
	})
	for page, views := range group {
		views := views
		mux.HandleFunc("/"+snapshot.PagePath(pages.ByTag, "healing", page), func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(views)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

/*
TestClient_SearchIndex checks the one-shot index fetch.
*/
func TestClient_SearchIndex(t *testing.T) {
	server := snapshotServer(t, nil)
	client := loader.NewClient(server.URL, 0)

	records, err := client.SearchIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "indexed", records[0].Title)
}

/*
TestCursor_WalksPages verifies a cursor accumulates pages in order, stops
on the short final page, and then reports ErrNoMorePages.
*/
func TestCursor_WalksPages(t *testing.T) {
	server := snapshotServer(t, map[int][]catalog.View{
		1: pageViews(1, 20),
		2: pageViews(21, 40),
		3: pageViews(41, 45),
	})
	client := loader.NewClient(server.URL, 0)

	cursor := client.Pages(pages.ByTag, "healing")
	ctx := context.Background()

	first, err := cursor.More(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 20)

	_, err = cursor.More(ctx)
	require.NoError(t, err)

	last, err := cursor.More(ctx)
	require.NoError(t, err)
	assert.Len(t, last, 5)

	// The short page was terminal.
	_, err = cursor.More(ctx)
	assert.ErrorIs(t, err, loader.ErrNoMorePages)

	items := cursor.Items()
	require.Len(t, items, 45)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 45, items[44].ID)
}

/*
TestCursor_MissingPageEndsWalk verifies a 404 on the next page is treated
as the end of a full-page-aligned group, not a failure.
*/
func TestCursor_MissingPageEndsWalk(t *testing.T) {
	server := snapshotServer(t, map[int][]catalog.View{
		1: pageViews(1, 20),
	})
	client := loader.NewClient(server.URL, 0)

	cursor := client.Pages(pages.ByTag, "healing")
	ctx := context.Background()

	_, err := cursor.More(ctx)
	require.NoError(t, err)

	_, err = cursor.More(ctx)
	assert.ErrorIs(t, err, loader.ErrNoMorePages)
	assert.Len(t, cursor.Items(), 20)
}

/*
TestCursor_RetryAfterFailure verifies a transient server error leaves the
cursor position untouched so the same page can be retried.
*/
func TestCursor_RetryAfterFailure(t *testing.T) {
	var failures atomic.Int32
	failures.Store(1)

	mux := http.NewServeMux()
	mux.HandleFunc("/"+snapshot.PagePath(pages.ByTag, "t", 1), func(w http.ResponseWriter, r *http.Request) {
		if failures.Add(-1) >= 0 {
			http.Error(w, "busy", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(pageViews(1, 5))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := loader.NewClient(server.URL, 0)
	cursor := client.Pages(pages.ByTag, "t")
	ctx := context.Background()

	_, err := cursor.More(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, loader.ErrNoMorePages)
	assert.Empty(t, cursor.Items())

	// Retry succeeds from the same position.
	page, err := cursor.More(ctx)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	// The short page was terminal.
	_, err = cursor.More(ctx)
	assert.ErrorIs(t, err, loader.ErrNoMorePages)
}

/*
TestClient_Resume verifies a cursor seeded with inlined items continues at
the first un-fetched page.
*/
func TestClient_Resume(t *testing.T) {
	server := snapshotServer(t, map[int][]catalog.View{
		2: pageViews(21, 30),
	})
	client := loader.NewClient(server.URL, 0)

	t.Run("full_pages_continue", func(t *testing.T) {
		cursor := client.Resume(pages.ByTag, "healing", pageViews(1, 20))

		page, err := cursor.More(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 10)
		assert.Len(t, cursor.Items(), 30)
	})

	t.Run("partial_inline_is_complete", func(t *testing.T) {
		cursor := client.Resume(pages.ByTag, "healing", pageViews(1, 7))

		_, err := cursor.More(context.Background())
		assert.ErrorIs(t, err, loader.ErrNoMorePages)
		assert.Len(t, cursor.Items(), 7)
	})
}
