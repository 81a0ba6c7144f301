package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/mkardas/job-extractor/internal/jobs"
)

// LinkedIn parses linkedin.com job view pages. LinkedIn ships JSON-LD on
// most public postings; the DOM selectors cover both the logged-out top
// card and the unified job details layout.
type LinkedIn struct{}

func (LinkedIn) Name() string { return "linkedin" }

func (LinkedIn) Parse(doc *goquery.Document, pageURL string) jobs.ParseResult {
	if posting, ok := ExtractJobPosting(doc); ok {
		return fromJobPosting(posting, pageURL)
	}

	rec := jobs.JobRecord{
		Title:      Text(doc, ".top-card-layout__title, .job-details-jobs-unified-top-card__job-title"),
		Company:    Text(doc, ".topcard__org-name-link, .job-details-jobs-unified-top-card__company-name"),
		Location:   Text(doc, ".topcard__flavor--bullet, .job-details-jobs-unified-top-card__bullet"),
		PostedDate: Text(doc, ".posted-time-ago__text, .job-details-jobs-unified-top-card__posted-date"),
		URL:        pageURL,
	}

	description := doc.Find(".description__text, .show-more-less-html__markup")
	if description.Length() > 0 {
		rec.Description = CleanText(description.Text())
	}

	rec.Salary = Text(doc, ".compensation__salary")
	if rec.Salary == "" {
		rec.Salary = Text(doc, ".job-details-jobs-unified-top-card__job-insight")
	}

	sections := ScanSections(description)
	rec.Requirements = sections.Requirements
	rec.Responsibilities = sections.Responsibilities
	rec.Benefits = sections.Benefits

	rec.Language = DetectLanguage(rec.Description + " " + rec.Title)

	return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
}
