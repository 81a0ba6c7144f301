package jobs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalFlattensExtra(t *testing.T) {
	t.Parallel()

	rec := JobRecord{
		Title:    "SEO Specialist",
		Company:  "Acme",
		URL:      "https://example.com/jobs/1",
		Language: "en",
		Extra: map[string]any{
			"jobId": "1a98731e-8cc5-4d96-9eea-415dba5faa68",
			"title": "should never shadow the named field",
		},
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(out, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if flat["jobId"] != "1a98731e-8cc5-4d96-9eea-415dba5faa68" {
		t.Fatalf("jobId = %v", flat["jobId"])
	}
	if flat["title"] != "SEO Specialist" {
		t.Fatalf("named field lost precedence: %v", flat["title"])
	}
	if strings.Contains(string(out), "Extra") {
		t.Fatal("Extra must not appear as a nested object")
	}
}

func TestUnmarshalCollectsUnknownKeys(t *testing.T) {
	t.Parallel()

	raw := `{
		"title": "Backend Engineer",
		"company": "Acme",
		"remotePolicy": "hybrid",
		"visaSponsorship": true,
		"teamSize": 12,
		"perks": ["gym", "lunch"],
		"nested": {"not": "kept"}
	}`
	var rec JobRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Title != "Backend Engineer" {
		t.Fatalf("title = %q", rec.Title)
	}
	if rec.Extra["remotePolicy"] != "hybrid" || rec.Extra["visaSponsorship"] != true {
		t.Fatalf("extra = %v", rec.Extra)
	}
	if rec.Extra["teamSize"] != float64(12) {
		t.Fatalf("teamSize = %v", rec.Extra["teamSize"])
	}
	if _, ok := rec.Extra["perks"]; !ok {
		t.Fatal("string arrays should be kept")
	}
	if _, ok := rec.Extra["nested"]; ok {
		t.Fatal("nested objects should be dropped")
	}
}

func TestApplyFallbacks(t *testing.T) {
	t.Parallel()

	var rec JobRecord
	rec.ApplyFallbacks("https://example.com/jobs/1")
	if rec.Title != FallbackTitle || rec.Company != FallbackCompany {
		t.Fatalf("unexpected fallbacks: %+v", rec)
	}
	if rec.Description != FallbackDescription || rec.Language != FallbackLanguage {
		t.Fatalf("unexpected fallbacks: %+v", rec)
	}
	if rec.URL != "https://example.com/jobs/1" {
		t.Fatalf("url = %q", rec.URL)
	}

	rec = JobRecord{Title: "Kept", Language: "fr"}
	rec.ApplyFallbacks("https://example.com")
	if rec.Title != "Kept" || rec.Language != "fr" {
		t.Fatalf("fallbacks must not overwrite values: %+v", rec)
	}
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	rec := Placeholder("https://example.com/x", "fetch failed")
	if rec.ErrorDetail != "fetch failed" {
		t.Fatalf("error detail = %q", rec.ErrorDetail)
	}
	if rec.Title != FallbackTitle || rec.URL != "https://example.com/x" {
		t.Fatalf("unexpected placeholder: %+v", rec)
	}
}
