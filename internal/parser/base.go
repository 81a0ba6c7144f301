package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses whitespace runs (including non-breaking spaces) into
// single spaces and trims the result.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Text returns the cleaned text of the first node matching selector, or ""
// when nothing matches.
func Text(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return CleanText(sel.First().Text())
}

// splitItems breaks paragraph text into list-like items on bullet markers
// and line boundaries.
func splitItems(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '•' || r == '\n' || r == '*'
	})
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = CleanText(strings.TrimLeft(part, "-– \t"))
		if len(part) > 2 {
			items = append(items, part)
		}
	}
	return items
}

// listItems extracts the cleaned text of every li under sel.
func listItems(sel *goquery.Selection) []string {
	var items []string
	sel.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := CleanText(li.Text()); text != "" {
			items = append(items, text)
		}
	})
	return items
}
