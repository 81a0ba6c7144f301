package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkardas/job-extractor/internal/jobs"
)

// JobPosting mirrors the schema.org JobPosting vocabulary as embedded in
// ld+json script tags.
type JobPosting struct {
	Type               typeField     `json:"@type"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	DatePosted         string        `json:"datePosted"`
	ValidThrough       string        `json:"validThrough"`
	EmploymentType     string        `json:"employmentType"`
	HiringOrganization organization  `json:"hiringOrganization"`
	JobLocation        locationField `json:"jobLocation"`
	BaseSalary         *salaryField  `json:"baseSalary"`
	EstimatedSalary    *salaryField  `json:"estimatedSalary"`
}

type organization struct {
	Name string `json:"name"`
}

// typeField accepts "@type" as either a string or an array of strings.
type typeField string

func (t *typeField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = typeField(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("unmarshal @type: %w", err)
	}
	if len(many) > 0 {
		*t = typeField(many[0])
	}
	return nil
}

// locationField accepts jobLocation as a bare string, an object with a
// postal address, or an array of either.
type locationField struct {
	value string
}

type jsonLDAddress struct {
	Address struct {
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
	} `json:"address"`
}

func (l *locationField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		l.value = single
		return nil
	}
	var obj jsonLDAddress
	if err := json.Unmarshal(data, &obj); err == nil {
		l.value = obj.Address.AddressLocality
		return nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err != nil {
		return nil // tolerate odd shapes; location stays empty
	}
	if len(many) > 0 {
		var nested locationField
		if err := nested.UnmarshalJSON(many[0]); err == nil {
			l.value = nested.value
		}
	}
	return nil
}

func (l locationField) String() string { return l.value }

type salaryField struct {
	Currency string  `json:"currency"`
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
	Value    float64 `json:"value"`
	UnitText string  `json:"unitText"`
}

// String renders the salary as "min - max CUR" like the sites themselves
// tend to display it.
func (s *salaryField) String() string {
	if s == nil {
		return ""
	}
	unit := s.Currency
	if unit == "" {
		unit = s.UnitText
	}
	switch {
	case s.MinValue != 0 || s.MaxValue != 0:
		return CleanText(fmt.Sprintf("%s - %s %s",
			trimFloat(s.MinValue), trimFloat(s.MaxValue), unit))
	case s.Value != 0:
		return CleanText(fmt.Sprintf("%s %s", trimFloat(s.Value), unit))
	default:
		return ""
	}
}

func trimFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

type jsonLDGraph struct {
	Graph []json.RawMessage `json:"@graph"`
}

// ExtractJobPosting scans ld+json script blocks for a JobPosting, either at
// the top level or inside an @graph array.
func ExtractJobPosting(doc *goquery.Document) (*JobPosting, bool) {
	var found *JobPosting
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		if posting := decodeJobPosting([]byte(raw)); posting != nil {
			found = posting
			return false
		}
		return true
	})
	return found, found != nil
}

// ParseStructured is the schema.org path for hosts with no dedicated
// parser: a JobPosting block alone is enough for a usable record.
func ParseStructured(doc *goquery.Document, pageURL string) (jobs.ParseResult, bool) {
	posting, ok := ExtractJobPosting(doc)
	if !ok {
		return jobs.ParseResult{}, false
	}
	return fromJobPosting(posting, pageURL), true
}

func decodeJobPosting(raw []byte) *JobPosting {
	var posting JobPosting
	if err := json.Unmarshal(raw, &posting); err == nil && posting.Type == "JobPosting" {
		return &posting
	}
	var graph jsonLDGraph
	if err := json.Unmarshal(raw, &graph); err != nil {
		return nil
	}
	for _, item := range graph.Graph {
		var posting JobPosting
		if err := json.Unmarshal(item, &posting); err == nil && posting.Type == "JobPosting" {
			return &posting
		}
	}
	return nil
}

// fromJobPosting maps structured metadata into a record. Structured data
// rarely itemizes requirements/responsibilities/benefits, so the result
// always requests the gap-filling pass.
func fromJobPosting(p *JobPosting, pageURL string) jobs.ParseResult {
	salary := p.BaseSalary.String()
	if salary == "" {
		salary = p.EstimatedSalary.String()
	}
	rec := jobs.JobRecord{
		Title:               CleanText(p.Title),
		Company:             CleanText(p.HiringOrganization.Name),
		Location:            CleanText(p.JobLocation.String()),
		Description:         CleanText(stripTags(p.Description)),
		Salary:              salary,
		JobType:             CleanText(p.EmploymentType),
		PostedDate:          p.DatePosted,
		ApplicationDeadline: p.ValidThrough,
		URL:                 pageURL,
	}
	rec.Language = DetectLanguage(rec.Description + " " + rec.Title)
	return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
}

// stripTags drops markup that sites embed inside JSON-LD descriptions.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
