package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fold canonicalizes a string for matching: NFKC compatibility
// normalization (collapses full-width/half-width variants, which Japanese
// catalog data mixes freely) followed by lower-casing.
func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Match reports whether the record matches a free-text query.
//
// Semantics: case-insensitive substring match against the title, circle
// name, any cast name, or any tag — a logical OR across fields. The query
// is a single token; it is not split, so multi-word AND queries are not
// supported. A blank query matches everything.
func (r Record) Match(query string) bool {
	needle := fold(strings.TrimSpace(query))
	if needle == "" {
		return true
	}

	if strings.Contains(fold(r.Title), needle) {
		return true
	}
	if strings.Contains(fold(r.Circle), needle) {
		return true
	}
	for _, name := range r.Cast {
		if strings.Contains(fold(name), needle) {
			return true
		}
	}
	for _, tag := range r.Tags {
		if strings.Contains(fold(tag), needle) {
			return true
		}
	}

	return false
}

// Filter returns the records matching query, preserving index order.
func Filter(records []Record, query string) []Record {
	matched := make([]Record, 0)
	for _, r := range records {
		if r.Match(query) {
			matched = append(matched, r)
		}
	}
	return matched
}
