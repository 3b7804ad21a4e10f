package snapshot

import (
	"net/url"
	"path"
	"strconv"

	"github.com/taibuivan/nijidex/internal/pages"
)

// Artifact names within one snapshot version directory. The layout is the
// contract between the writer, the static renderer, and the runtime loader.
const (
	SearchIndexFile = "search-index.json"
	ManifestFile    = "manifest.json"
	ViewsFile       = "views.json"
	ListingsFile    = "listings.json"
	FeedFile        = "feed.xml"
	SitemapFile     = "sitemap.xml"

	DataDir    = "data"
	RelatedDir = "related"

	// CurrentPointer is the file at the snapshot root naming the published
	// version directory. Swapping it is the atomic publish step.
	CurrentPointer = "current"
)

// EscapeGroupName percent-encodes a group name for use as a path segment.
// The loader applies the same encoding, so writer and reader can never
// disagree on where a group's pages live.
func EscapeGroupName(name string) string {
	return url.PathEscape(name)
}

/// PagePath returns the version-relative path of one group page file:
// data/{dimension}/{escaped group name}/{page}.json
func PagePath(dim pages.Dimension, name string, page int) string {
	return path.Join(DataDir, string(dim), EscapeGroupName(name), strconv.Itoa(page)+".json")
}

// RelatedPath returns the version-relative path of a work's related shelf.
func RelatedPath(workID int) string {
	return path.Join(RelatedDir, strconv.Itoa(workID)+".json")
}
