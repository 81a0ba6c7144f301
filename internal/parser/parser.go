// Package parser extracts job posting fields from HTML documents. Each
// supported site has a dedicated parser selected through a registry; all of
// them try embedded structured data first and fall back to DOM heuristics.
package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/mkardas/job-extractor/internal/jobs"
)

// Parser produces a partial record from a fetched document. Extraction
// failures degrade to whatever fields were found; absence of data is not an
// error.
type Parser interface {
	Name() string
	Parse(doc *goquery.Document, pageURL string) jobs.ParseResult
}

var registry = map[string]Parser{}

func register(p Parser) {
	registry[p.Name()] = p
}

// Lookup resolves a parser by the name the site classifier assigned.
func Lookup(name string) (Parser, bool) {
	p, ok := registry[name]
	return p, ok
}

func init() {
	register(LinkedIn{})
	register(Indeed{})
	register(WTTJ{})
}
