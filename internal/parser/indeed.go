package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkardas/job-extractor/internal/jobs"
)

// Indeed parses indeed.com and indeed.fr job pages.
type Indeed struct{}

func (Indeed) Name() string { return "indeed" }

func (Indeed) Parse(doc *goquery.Document, pageURL string) jobs.ParseResult {
	if posting, ok := ExtractJobPosting(doc); ok {
		return fromJobPosting(posting, pageURL)
	}

	rec := jobs.JobRecord{
		Title:      Text(doc, "h1.jobsearch-JobInfoHeader-title, .icl-u-xs-mb--xs"),
		Company:    Text(doc, ".jobsearch-InlineCompanyRating-companyName, .icl-u-lg-mr--sm"),
		Location:   Text(doc, ".jobsearch-JobInfoHeader-subtitle .jobsearch-JobInfoHeader-subtitle-location"),
		PostedDate: Text(doc, ".jobsearch-JobMetadataFooter-item, .jobsearch-HiringInsights-entry--age"),
		URL:        pageURL,
	}

	rec.Salary = Text(doc, ".jobsearch-JobHeader-salary")
	if rec.Salary == "" {
		doc.Find(".attribute_snippet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := CleanText(s.Text())
			if looksLikeSalary(text) {
				rec.Salary = text
				return false
			}
			return true
		})
	}

	description := doc.Find("#jobDescriptionText, .jobsearch-jobDescriptionText")
	if description.Length() > 0 {
		rec.Description = CleanText(description.Text())
	}

	doc.Find(".jobsearch-JobDescriptionSection-sectionItem").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(CleanText(s.Find(".jobsearch-JobDescriptionSection-sectionItemKey").Text()))
		if strings.Contains(label, "job type") || strings.Contains(label, "type d'emploi") {
			rec.JobType = CleanText(s.Find(".jobsearch-JobDescriptionSection-sectionItemValue").Text())
		}
	})

	sections := ScanSections(description)
	rec.Requirements = sections.Requirements
	rec.Responsibilities = sections.Responsibilities
	rec.Benefits = sections.Benefits

	rec.Language = DetectLanguage(rec.Description + " " + rec.Title)

	return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
}

func looksLikeSalary(text string) bool {
	lower := strings.ToLower(text)
	return strings.ContainsAny(text, "$€£") ||
		strings.Contains(lower, "salary") ||
		strings.Contains(lower, "salaire")
}
