// Package jobs defines the canonical job posting record and the merge and
// error policies shared across the extraction pipeline.
package jobs

import (
	"encoding/json"
	"fmt"
)

// Fallback literals used when a field could not be extracted. A record
// returned to a caller always carries a title, company, description,
// language and URL.
const (
	FallbackTitle       = "Unknown Title"
	FallbackCompany     = "Unknown Company"
	FallbackDescription = "No description available"
	FallbackLanguage    = "en"

	// TextInputURL marks records produced from pasted text instead of a URL.
	TextInputURL = "N/A - Direct text input"
)

// JobRecord is the normalized output unit describing one job posting.
type JobRecord struct {
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	Location            string   `json:"location,omitempty"`
	Salary              string   `json:"salary,omitempty"`
	JobType             string   `json:"jobType,omitempty"`
	Description         string   `json:"description"`
	Requirements        []string `json:"requirements,omitempty"`
	Responsibilities    []string `json:"responsibilities,omitempty"`
	Benefits            []string `json:"benefits,omitempty"`
	PostedDate          string   `json:"postedDate,omitempty"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty"`
	ContactInfo         string   `json:"contactInfo,omitempty"`
	URL                 string   `json:"url"`
	Language            string   `json:"language"`
	ErrorDetail         string   `json:"error,omitempty"`

	// Extra holds fields contributed by a parsing strategy that are not part
	// of the fixed schema (for example a site-specific job id). They are
	// flattened into the JSON object alongside the named fields.
	Extra map[string]any `json:"-"`
}

// ParseResult is a partial JobRecord produced by a single parsing strategy.
// NeedsEnrichment signals that the deterministic parser could not populate
// all structured fields and a fallback pass should fill the gaps.
type ParseResult struct {
	Record          JobRecord
	NeedsEnrichment bool
}

// knownKeys are the fixed-schema JSON keys; anything else decoded from a
// strategy's output lands in Extra.
var knownKeys = map[string]struct{}{
	"title": {}, "company": {}, "location": {}, "salary": {},
	"jobType": {}, "description": {}, "requirements": {},
	"responsibilities": {}, "benefits": {}, "postedDate": {},
	"applicationDeadline": {}, "contactInfo": {}, "url": {},
	"language": {}, "error": {}, "needsEnrichment": {},
}

type jobRecordAlias JobRecord

// MarshalJSON flattens Extra into the top-level object. Named fields win on
// key collision.
func (r JobRecord) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(jobRecordAlias(r))
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	flat := make(map[string]any, len(r.Extra)+16)
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, fmt.Errorf("flatten record: %w", err)
	}
	for k, v := range r.Extra {
		if _, fixed := knownKeys[k]; fixed {
			continue
		}
		if _, taken := flat[k]; taken {
			continue
		}
		flat[k] = v
	}
	out, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("marshal flattened record: %w", err)
	}
	return out, nil
}

// UnmarshalJSON decodes the fixed schema and collects unrecognized
// string/array/bool/number fields into Extra.
func (r *JobRecord) UnmarshalJSON(data []byte) error {
	var alias jobRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	*r = JobRecord(alias)

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal record fields: %w", err)
	}
	for k, v := range raw {
		if _, fixed := knownKeys[k]; fixed {
			continue
		}
		if !extensibleValue(v) {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
	return nil
}

func extensibleValue(v any) bool {
	switch val := v.(type) {
	case string, bool, float64:
		return true
	case []any:
		for _, item := range val {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ApplyFallbacks fills the always-present fields with their fallback
// literals so callers never see an empty record.
func (r *JobRecord) ApplyFallbacks(url string) {
	if r.Title == "" {
		r.Title = FallbackTitle
	}
	if r.Company == "" {
		r.Company = FallbackCompany
	}
	if r.Description == "" {
		r.Description = FallbackDescription
	}
	if r.Language == "" {
		r.Language = FallbackLanguage
	}
	if r.URL == "" {
		r.URL = url
	}
}

// hasContent reports whether any field holds extracted content rather than
// a fallback literal.
func (r JobRecord) hasContent() bool {
	if r.Title != "" && r.Title != FallbackTitle {
		return true
	}
	if r.Company != "" && r.Company != FallbackCompany {
		return true
	}
	if r.Description != "" && r.Description != FallbackDescription {
		return true
	}
	if r.Location != "" || r.Salary != "" || r.JobType != "" {
		return true
	}
	return len(r.Requirements) > 0 || len(r.Responsibilities) > 0 || len(r.Benefits) > 0
}

// Placeholder returns a minimal record for failure paths; every non-200
// response still carries one so the caller never receives a bare error.
func Placeholder(url, detail string) JobRecord {
	rec := JobRecord{ErrorDetail: detail}
	rec.ApplyFallbacks(url)
	return rec
}
