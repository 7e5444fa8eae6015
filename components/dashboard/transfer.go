package dashboard

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const exportStamp = "2006-01-02T15:04:05.000Z"

// ExportFileName names an export file after t in UTC, with the ':' and '.'
// of the timestamp replaced by '-'.
func ExportFileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format(exportStamp))
	return "dashboard-export-" + stamp + ".json"
}

// ParseBookmarksHTML reads a browser bookmark export (the Netscape bookmark
// file format). Each link becomes an item in the category named after its
// innermost folder; links outside any folder land in DefaultCategory. Only
// http and https links are kept.
func ParseBookmarksHTML(r io.Reader) ([]Item, error) {
	var (
		items   []Item
		folders []string
		pending string
		counts  = make(map[string]int)
		capture *strings.Builder
		target  string
		link    *Item
	)
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("dashboard: parse bookmarks: %w", err)
			}
			if target == "dd" {
				finishDescription(items, capture)
			}
			if len(items) == 0 {
				return nil, &ValidationError{Message: "no bookmarks found"}
			}
			return items, nil
		case html.TextToken:
			if capture != nil {
				capture.Write(z.Text())
			}
		case html.StartTagToken:
			tag, hasAttr := z.TagName()
			switch string(tag) {
			case "h3":
				capture, target = &strings.Builder{}, "h3"
			case "a":
				href := ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "href" {
						href = strings.TrimSpace(string(val))
					}
				}
				link = nil
				if bookmarkURL(href) {
					link = &Item{URL: href}
					capture, target = &strings.Builder{}, "a"
				}
			case "dd":
				if len(items) > 0 {
					capture, target = &strings.Builder{}, "dd"
				}
			case "dl":
				folders = append(folders, pending)
				pending = ""
			default:
				if target == "dd" {
					finishDescription(items, capture)
					capture, target = nil, ""
				}
			}
		case html.EndTagToken:
			tag, _ := z.TagName()
			switch string(tag) {
			case "h3":
				if target == "h3" {
					pending = strings.TrimSpace(capture.String())
					capture, target = nil, ""
				}
			case "a":
				if target == "a" && link != nil {
					link.Name = strings.TrimSpace(capture.String())
					if link.Name == "" {
						link.Name = link.URL
					}
					link.Category = innermost(folders)
					link.OrderIndex = float64(counts[link.Category])
					counts[link.Category]++
					items = append(items, *link)
					capture, target, link = nil, "", nil
				}
			case "dl":
				if target == "dd" {
					finishDescription(items, capture)
					capture, target = nil, ""
				}
				if len(folders) > 0 {
					folders = folders[:len(folders)-1]
				}
			}
		}
	}
}

func finishDescription(items []Item, capture *strings.Builder) {
	if capture == nil || len(items) == 0 {
		return
	}
	if desc := strings.TrimSpace(capture.String()); desc != "" {
		items[len(items)-1].Description = desc
	}
}

func innermost(folders []string) string {
	for i := len(folders) - 1; i >= 0; i-- {
		if folders[i] != "" {
			return folders[i]
		}
	}
	return DefaultCategory
}

func bookmarkURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
