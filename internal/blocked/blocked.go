// Package blocked derives best-effort records for sites that reject
// automated fetches. It never touches the network: everything comes from
// the URL itself.
package blocked

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mkardas/job-extractor/internal/jobs"
)

var (
	uuidPattern    = regexp.MustCompile(`[a-f0-9]{8}(-[a-f0-9]{4}){3}-[a-f0-9]{12}`)
	trailingLocale = regexp.MustCompile(`\s+([a-zA-Z\s]+\d{2,5})$`)
)

// Boilerplate slug tokens that never belong to a job title.
var stopTokens = map[string]struct{}{
	"job": {}, "jobs": {}, "emploi": {}, "emplois": {},
	"offre": {}, "offres": {}, "demploi": {}, "d": {},
	"listing": {}, "view": {}, "apply": {}, "fr": {}, "en": {},
}

const (
	fallbackTitle   = "Job Listing"
	fallbackCompany = "Company (blocked site)"

	adviceEN = "This job posting could not be fetched automatically because the " +
		"site blocks scraping. Copy the posting text manually and use the text " +
		"extraction mode instead."
	adviceFR = "Cette offre n'a pas pu être récupérée automatiquement car le " +
		"site bloque les robots. Copiez le texte de l'offre manuellement et " +
		"utilisez le mode d'extraction par texte."
)

// FromURL builds a partial record directly from a blocked site's URL path:
// a title decoded from the job-slug segment, a job id when the path embeds a
// UUID, and a language inferred from the TLD. The result always requests
// enrichment, though the orchestrator has no content to enrich it with —
// the flag documents that the record is incomplete.
func FromURL(rawURL string) jobs.ParseResult {
	rec := jobs.JobRecord{
		Title:   fallbackTitle,
		Company: fallbackCompany,
		URL:     rawURL,
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		rec.Language = "en"
		rec.Description = adviceEN
		return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
	}

	rec.Language = languageFromHost(u.Hostname())
	rec.Description = advice(rec.Language)

	if title, location, ok := titleFromPath(u.Path); ok {
		rec.Title = title
		if location != "" {
			rec.Location = location
		}
	}
	if id := uuidPattern.FindString(strings.ToLower(rawURL)); id != "" {
		rec.Extra = map[string]any{"jobId": id}
	}

	return jobs.ParseResult{Record: rec, NeedsEnrichment: true}
}

// titleFromPath locates the path segment matching the job/emploi/offres
// patterns and decodes a title from it, or from the segment right after it
// when the matching one is pure boilerplate (".../offres-demploi/<slug>").
// A trailing "<place> <postcode>" run is split off as the location.
func titleFromPath(path string) (title, location string, ok bool) {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		lower := strings.ToLower(segment)
		if !strings.Contains(lower, "job") &&
			!strings.Contains(lower, "emploi") &&
			!strings.Contains(lower, "offres") {
			continue
		}
		slug := slugTitle(segment)
		if slug == "" && i+1 < len(segments) {
			slug = slugTitle(segments[i+1])
		}
		if slug == "" {
			continue
		}
		if m := trailingLocale.FindStringSubmatch(slug); m != nil {
			location = strings.TrimSpace(m[1])
			slug = strings.TrimSpace(strings.TrimSuffix(slug, m[0]))
		}
		return titleCase(slug), location, true
	}
	return "", "", false
}

// slugTitle turns a URL slug into plain words: percent-decoding, UUID and
// boilerplate-token removal, separators to spaces.
func slugTitle(segment string) string {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		decoded = segment
	}
	decoded = uuidPattern.ReplaceAllString(strings.ToLower(decoded), "")
	tokens := strings.FieldsFunc(decoded, func(r rune) bool {
		return r == '-' || r == '_' || r == '+'
	})
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, stop := stopTokens[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func languageFromHost(host string) string {
	if strings.HasSuffix(host, ".fr") {
		return "fr"
	}
	return "en"
}

func advice(language string) string {
	if language == "fr" {
		return adviceFR
	}
	return adviceEN
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
