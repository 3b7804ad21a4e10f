package snapshot

import (
	"bytes"
	"fmt"
	"net/url"
	"time"

	"github.com/taibuivan/nijidex/internal/catalog"
)

// staticPage is one fixed storefront route in the sitemap.
type staticPage struct {
	path       string
	priority   string
	changeFreq string
}

var staticPages = []staticPage{
	{"", "1.0", "daily"},
	{"/works/", "0.9", "daily"},
	{"/sale/", "0.9", "daily"},
	{"/search/", "0.7", "weekly"},
	{"/cv/", "0.7", "weekly"},
	{"/tags/", "0.7", "weekly"},
	{"/circles/", "0.7", "weekly"},
}

// BuildSitemap renders sitemap.xml covering the static routes plus every
// work, cast, tag and circle page. Dimension names are percent-encoded the
// same way the page artifacts are.
func BuildSitemap(works []*catalog.Work, cast, tags []catalog.NameCount, circles []catalog.Circle, baseURL string, now time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	buf.WriteString("\n")

	today := now.UTC().Format(time.DateOnly)
	for _, page := range staticPages {
		writeURL(&buf, baseURL+page.path, today, page.changeFreq, page.priority)
	}

	for _, w := range works {
		writeURL(&buf, fmt.Sprintf("%s/works/%d/", baseURL, w.ID), "", "weekly", "0.8")
	}
	for _, nc := range cast {
		writeURL(&buf, fmt.Sprintf("%s/cv/%s/", baseURL, url.PathEscape(nc.Name)), "", "weekly", "0.7")
	}
	for _, nc := range tags {
		writeURL(&buf, fmt.Sprintf("%s/tags/%s/", baseURL, url.PathEscape(nc.Name)), "", "weekly", "0.6")
	}
	for _, c := range circles {
		writeURL(&buf, fmt.Sprintf("%s/circles/%s/", baseURL, url.PathEscape(c.Name)), "", "weekly", "0.6")
	}

	buf.WriteString("</urlset>\n")
	return buf.Bytes()
}

func writeURL(buf *bytes.Buffer, loc, lastMod, changeFreq, priority string) {
	buf.WriteString("  <url>\n")
	writeElement(buf, "loc", loc, 4)
	if lastMod != "" {
		writeElement(buf, "lastmod", lastMod, 4)
	}
	writeElement(buf, "changefreq", changeFreq, 4)
	writeElement(buf, "priority", priority, 4)
	buf.WriteString("  </url>\n")
}
