package jobs

// Merge reconciles a deterministic parser record with an enrichment record.
// Parser fields take precedence for any key both produced; enrichment only
// fills fields the parser left absent or empty. The function is pure so the
// precedence rule stays testable without I/O.
func Merge(parsed, enriched JobRecord) JobRecord {
	out := parsed

	out.Title = firstNonEmpty(parsed.Title, enriched.Title)
	out.Company = firstNonEmpty(parsed.Company, enriched.Company)
	out.Location = firstNonEmpty(parsed.Location, enriched.Location)
	out.Salary = firstNonEmpty(parsed.Salary, enriched.Salary)
	out.JobType = firstNonEmpty(parsed.JobType, enriched.JobType)
	out.Description = firstNonEmpty(parsed.Description, enriched.Description)
	out.PostedDate = firstNonEmpty(parsed.PostedDate, enriched.PostedDate)
	out.ApplicationDeadline = firstNonEmpty(parsed.ApplicationDeadline, enriched.ApplicationDeadline)
	out.ContactInfo = firstNonEmpty(parsed.ContactInfo, enriched.ContactInfo)
	out.URL = firstNonEmpty(parsed.URL, enriched.URL)
	out.Language = firstNonEmpty(parsed.Language, enriched.Language)

	if len(out.Requirements) == 0 {
		out.Requirements = enriched.Requirements
	}
	if len(out.Responsibilities) == 0 {
		out.Responsibilities = enriched.Responsibilities
	}
	if len(out.Benefits) == 0 {
		out.Benefits = enriched.Benefits
	}

	if len(enriched.Extra) > 0 {
		merged := make(map[string]any, len(parsed.Extra)+len(enriched.Extra))
		for k, v := range enriched.Extra {
			merged[k] = v
		}
		for k, v := range parsed.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}

	// A strategy error stops being caller-facing once another strategy
	// filled the record; when nothing did, the enrichment error must
	// survive the merge so the caller can tell the record is empty.
	out.ErrorDetail = parsed.ErrorDetail
	if out.ErrorDetail == "" && !out.hasContent() {
		out.ErrorDetail = enriched.ErrorDetail
	}

	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
