// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package loader is the consumer-side client for published snapshots.

It fetches the search index in one request and walks a group's overflow
pages through a cursor. The cursor is retry-safe: a failed page fetch
leaves the cursor position untouched, so the caller can simply call More
again. Running past the last page returns [ErrNoMorePages].
*/
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/internal/pages"
	"github.com/taibuivan/nijidex/internal/search"
	"github.com/taibuivan/nijidex/internal/snapshot"
	"github.com/taibuivan/nijidex/pkg/pagination"
)

// ErrNoMorePages reports that a cursor has walked past the group's last
// page. It is a terminal state, not a transient failure.
var ErrNoMorePages = errors.New("loader: no more pages")

const defaultRequestTimeout = 15 * time.Second

// Client fetches snapshot artifacts from a published base URL.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	policy  pagination.Policy
}

// NewClient returns a client for the snapshot published under baseURL.
// Requests are throttled to rps requests per second; rps <= 0 disables
// throttling.
func NewClient(baseURL string, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		limiter: limiter,
		policy:  pagination.Default(),
	}
}

// SearchIndex fetches the full client-side search index.
func (c *Client) SearchIndex(ctx context.Context) ([]search.Record, error) {
	var records []search.Record
	if err := c.getJSON(ctx, "/"+snapshot.SearchIndexFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Cursor walks one group's overflow pages in order.
type Cursor struct {
	client *Client
	dim    pages.Dimension
	name   string

	next  int
	items []catalog.View
	done  bool
}

// Pages returns a cursor positioned before the group's first page file.
func (c *Client) Pages(dim pages.Dimension, name string) *Cursor {
	return &Cursor{client: c, dim: dim, name: name, next: 1}
}

// Resume returns a cursor seeded with items already in hand (typically a
// group's inline listing) so More continues from the first un-fetched page.
func (c *Client) Resume(dim pages.Dimension, name string, inlined []catalog.View) *Cursor {
	cur := c.Pages(dim, name)
	cur.items = append(cur.items, inlined...)
	cur.next = 1 + len(inlined)/c.policy.PageSize
	if len(inlined)%c.policy.PageSize != 0 {
		// A partial trailing page means the group had no further page files.
		cur.done = true
	}
	return cur
}

// Items returns every view accumulated so far, in canonical order.
func (cur *Cursor) Items() []catalog.View {
	return cur.items
}

// More fetches the next page and appends it to Items. After the last page
// it returns ErrNoMorePages; any other error leaves the cursor unchanged so
// the call can be retried.
func (cur *Cursor) More(ctx context.Context) ([]catalog.View, error) {
	if cur.done {
		return nil, ErrNoMorePages
	}

	path := "/" + snapshot.PagePath(cur.dim, cur.name, cur.next)
	var page []catalog.View
	if err := cur.client.getJSON(ctx, path, &page); err != nil {
		if errors.Is(err, errNotFound) {
			cur.done = true
			return nil, ErrNoMorePages
		}
		return nil, err
	}

	cur.next++
	cur.items = append(cur.items, page...)
	if len(page) < cur.client.policy.PageSize {
		cur.done = true
	}
	return page, nil
}

var errNotFound = errors.New("loader: not found")

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("loader: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("loader: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("loader: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("loader: get %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("loader: get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("loader: decode %s: %w", path, err)
	}
	return nil
}
