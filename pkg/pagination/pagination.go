// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination defines the shared paging policy of the export pipeline.
//
// # Overview
//
// The build-time planner and the runtime incremental loader must agree on
// two numbers: how large a group may grow before it needs on-demand page
// files, and how many items each page file holds. Both live here so the two
// components can never drift apart.
package pagination

const (
	// DefaultPageSize is the number of items per page file.
	DefaultPageSize = 20
	// DefaultInlineThreshold is the largest group the static snapshot embeds
	// whole; anything bigger is additionally split into page files.
	DefaultInlineThreshold = 100
)

// Policy is the paging contract shared by the planner and the loader.
type Policy struct {
	// PageSize is the fixed number of items per page file.
	PageSize int
	// InlineThreshold is the inline-eligibility cutoff for a group.
	InlineThreshold int
}

// Default returns the production paging policy.
func Default() Policy {
	return Policy{
		PageSize:        DefaultPageSize,
		InlineThreshold: DefaultInlineThreshold,
	}
}

// PageCount returns the number of pages needed for total items.
func (p Policy) PageCount(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Bounds returns the half-open [start, end) slice bounds for a 1-indexed
// page, clamped to total.
func (p Policy) Bounds(page, total int) (start, end int) {
	if page < 1 || p.PageSize <= 0 {
		return 0, 0
	}
	start = (page - 1) * p.PageSize
	if start >= total {
		return total, total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}
