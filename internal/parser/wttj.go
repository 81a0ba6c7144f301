package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/mkardas/job-extractor/internal/jobs"
)

// WTTJ parses welcometothejungle.com job pages. The site renders stable
// class names alongside generated ones, and usually carves the posting into
// clearly headed sections.
type WTTJ struct{}

func (WTTJ) Name() string { return "wttj" }

func (WTTJ) Parse(doc *goquery.Document, pageURL string) jobs.ParseResult {
	if posting, ok := ExtractJobPosting(doc); ok {
		return fromJobPosting(posting, pageURL)
	}

	rec := jobs.JobRecord{
		Title:      Text(doc, "h1.sc-6559pj-1, .job-title"),
		Company:    Text(doc, ".sc-1lvyirq-2, .company-name"),
		Location:   Text(doc, ".sc-1lvyirq-4, .location-name"),
		JobType:    Text(doc, ".sc-1c3ou0x-1, .contract-type"),
		Salary:     Text(doc, ".sc-16zcwcs-0, .salary-data"),
		PostedDate: Text(doc, ".sc-1dgnjq5-0, .posting-date"),
		URL:        pageURL,
	}

	description := doc.Find(".sc-65omev-1, .job-description")
	if description.Length() > 0 {
		rec.Description = CleanText(description.Text())
	}

	sections := ScanSections(description)
	rec.Requirements = sections.Requirements
	rec.Responsibilities = sections.Responsibilities
	rec.Benefits = sections.Benefits

	rec.Language = DetectLanguage(rec.Description + " " + rec.Title)

	return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
}
