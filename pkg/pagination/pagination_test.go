// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/nijidex/pkg/pagination"
)

/*
TestPolicy_PageCount checks page arithmetic including the exact-multiple
and empty edge cases.
*/
func TestPolicy_PageCount(t *testing.T) {
	policy := pagination.Default()

	tests := []struct {
		name  string
		total int
		want  int
	}{
		{"empty", 0, 0},
		{"negative", -5, 0},
		{"partial_page", 7, 1},
		{"exact_page", 20, 1},
		{"one_over", 21, 2},
		{"threshold_plus_one", 101, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.PageCount(tt.total))
		})
	}
}

/*
TestPolicy_Bounds checks the 1-indexed slice bounds, clamping at the tail
and collapsing out-of-range pages to empty.
*/
func TestPolicy_Bounds(t *testing.T) {
	policy := pagination.Default()

	tests := []struct {
		name      string
		page      int
		total     int
		wantStart int
		wantEnd   int
	}{
		{"first_page", 1, 50, 0, 20},
		{"middle_page", 2, 50, 20, 40},
		{"clamped_tail", 3, 50, 40, 50},
		{"past_the_end", 4, 50, 50, 50},
		{"zero_page", 0, 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := policy.Bounds(tt.page, tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
