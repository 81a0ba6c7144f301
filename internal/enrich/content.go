package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Chrome that never carries posting content.
const strippedSelectors = "script, style, noscript, iframe, svg, nav, footer, header"

// CleanContent reduces raw HTML to the visible text a prompt should carry.
// Invalid markup degrades to a whitespace-collapsed copy of the input.
func CleanContent(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(html)
	}
	doc.Find(strippedSelectors).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return collapse(doc.Text())
	}
	return collapse(body.Text())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
