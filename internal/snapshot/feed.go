package snapshot

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/pkg/pointer"
)

const (
	feedItemCount   = 20
	siteTitle       = "Nijidex - 同人音声・ASMRデータベース"
	siteDescription = "同人音声・ASMR作品の新着情報、セール情報をお届け"
)

// BuildFeed renders the RSS 2.0 feed of the newest works. Sale items get a
// discount prefix in the title; thumbnails become enclosures.
func BuildFeed(works []*catalog.Work, baseURL string, now time.Time) []byte {
	newest := catalog.NewWorks(works, feedItemCount)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", siteTitle, 4)
	writeElement(&buf, "link", baseURL+"/", 4)
	writeElement(&buf, "description", siteDescription, 4)
	writeElement(&buf, "lastBuildDate", now.UTC().Format(time.RFC1123Z), 4)
	writeElement(&buf, "generator", "nijidex-export", 4)
	writeElement(&buf, "language", "ja", 4)

	for _, w := range newest {
		writeFeedItem(&buf, w, baseURL, now)
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return buf.Bytes()
}

func writeFeedItem(buf *bytes.Buffer, w *catalog.Work, baseURL string, now time.Time) {
	buf.WriteString("    <item>\n")

	title := w.Title
	if w.OnSale && w.MaxDiscountRate != nil {
		title = fmt.Sprintf("【%d%%OFF】%s", pointer.Val(w.MaxDiscountRate), w.Title)
	}
	writeElement(buf, "title", title, 6)

	link := fmt.Sprintf("%s/works/%d/", baseURL, w.ID)
	writeElement(buf, "link", link, 6)

	buf.WriteString(`      <guid isPermaLink="true">`)
	_ = xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	description := w.Title + "の詳細ページ"
	if w.CircleName != "" {
		description = fmt.Sprintf("%s / %s", w.Title, w.CircleName)
	}
	writeElement(buf, "description", description, 6)

	pubDate := now
	if w.ReleaseDate != nil {
		pubDate = *w.ReleaseDate
	}
	writeElement(buf, "pubDate", pubDate.UTC().Format(time.RFC1123Z), 6)

	if w.Category != "" {
		writeElement(buf, "category", w.Category, 6)
	}
	if w.ThumbnailURL != "" {
		buf.WriteString(`      <enclosure url="`)
		_ = xml.EscapeText(buf, []byte(w.ThumbnailURL))
		buf.WriteString(`" type="image/jpeg" />` + "\n")
	}

	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, tag, value string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString("<" + tag + ">")
	_ = xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + tag + ">\n")
}
