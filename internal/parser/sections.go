package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sections holds the itemized lists recovered from a description body.
type Sections struct {
	Requirements     []string
	Responsibilities []string
	Benefits         []string
}

const headingSelector = "h2, h3, h4, strong, b"

// English and French keyword sets used to classify section headings.
var (
	requirementWords = []string{
		"requirement", "qualification", "skill", "exigence",
		"profil", "profile", "compétence", "competence",
	}
	responsibilityWords = []string{
		"responsib", "dutie", "duty", "mission", "role",
		"what you", "your job", "responsabilité", "responsabilite",
	}
	benefitWords = []string{
		"benefit", "perk", "we offer", "we provide",
		"avantage", "nous offrons",
	}
)

// ScanSections walks heading-like elements inside scope, classifies each
// heading against the keyword sets and collects the sibling content (list
// items, or paragraphs split on bullet boundaries) until the next heading.
func ScanSections(scope *goquery.Selection) Sections {
	var out Sections
	scope.Find(headingSelector).Each(func(_ int, heading *goquery.Selection) {
		text := strings.ToLower(CleanText(heading.Text()))
		if text == "" {
			return
		}
		var bucket *[]string
		switch {
		case matchesAny(text, requirementWords):
			bucket = &out.Requirements
		case matchesAny(text, responsibilityWords):
			bucket = &out.Responsibilities
		case matchesAny(text, benefitWords):
			bucket = &out.Benefits
		default:
			return
		}
		*bucket = append(*bucket, collectUntilNextHeading(heading)...)
	})
	return out
}

func collectUntilNextHeading(heading *goquery.Selection) []string {
	var items []string
	heading.NextUntil(headingSelector).Each(func(_ int, sibling *goquery.Selection) {
		switch {
		case sibling.Is("ul, ol"):
			items = append(items, listItems(sibling)...)
		case sibling.Is("p, div"):
			if nested := sibling.Find("ul, ol"); nested.Length() > 0 {
				items = append(items, listItems(nested)...)
				return
			}
			items = append(items, splitItems(sibling.Text())...)
		}
	})
	return items
}

func matchesAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
