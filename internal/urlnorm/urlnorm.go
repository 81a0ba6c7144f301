// Package urlnorm canonicalizes job posting URLs so that decorated variants
// of the same posting share one cache key.
package urlnorm

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// trackingParams are always stripped. utm_* is matched by prefix.
var trackingParams = map[string]struct{}{
	"fbclid":   {},
	"gclid":    {},
	"msclkid":  {},
	"ref":      {},
	"source":   {},
	"sid":      {},
	"jvo":      {},
	"hidesmr":  {},
	"promoted": {},
}

var numericSegment = regexp.MustCompile(`^\d+$`)

// Normalize validates and canonicalizes a raw URL. It lowercases scheme and
// host, drops the fragment, strips tracking parameters and sorts the query.
// LinkedIn job view URLs are rewritten to the minimal form containing only
// the numeric job id. Normalize(Normalize(u)) == Normalize(u) for every
// valid u.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if canonical, ok := linkedInJobURL(u); ok {
		return canonical, nil
	}

	q := u.Query()
	for key := range q {
		lk := strings.ToLower(key)
		if _, drop := trackingParams[lk]; drop || strings.HasPrefix(lk, "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode() // Encode sorts keys

	return u.String(), nil
}

// linkedInJobURL rewrites /jobs/view/<id> paths to the canonical minimal
// form, discarding every other path and query component.
func linkedInJobURL(u *url.URL) (string, bool) {
	if !strings.Contains(u.Host, "linkedin.com") {
		return "", false
	}
	parts := strings.Split(u.Path, "/")
	if !contains(parts, "jobs") || !contains(parts, "view") {
		return "", false
	}
	for _, part := range parts {
		if numericSegment.MatchString(part) {
			return "https://www.linkedin.com/jobs/view/" + part, true
		}
	}
	return "", false
}

// Host returns the lowercased hostname of an already-normalized URL.
func Host(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func contains(parts []string, want string) bool {
	for _, p := range parts {
		if p == want {
			return true
		}
	}
	return false
}
