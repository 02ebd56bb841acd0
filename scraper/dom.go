package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstText tries each candidate selector in order against sel and returns
// the first non-empty trimmed text. Selector-fallback lists are plain data;
// this is the single place that walks them.
func FirstText(sel *goquery.Selection, candidates []string) string {
	for _, c := range candidates {
		if t := strings.TrimSpace(sel.Find(c).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// FirstAttr tries each candidate selector in order and returns the first
// non-empty value among the given attributes of the matched element.
func FirstAttr(sel *goquery.Selection, candidates []string, attrs ...string) string {
	for _, c := range candidates {
		node := sel.Find(c).First()
		if node.Length() == 0 {
			continue
		}
		for _, attr := range attrs {
			if v, ok := node.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Containers returns the node set of the first container selector that
// matches anything on the page.
func Containers(doc *goquery.Document, candidates []string) *goquery.Selection {
	for _, c := range candidates {
		if s := doc.Find(c); s.Length() > 0 {
			return s
		}
	}
	return doc.Find(candidates[len(candidates)-1])
}
