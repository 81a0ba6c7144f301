// Package sites maps hostnames to extraction strategies.
package sites

import "strings"

// Outcome is the classification of a hostname.
type Outcome int

const (
	// OutcomeGeneric means no dedicated parser exists; enrichment is the
	// sole strategy after a fetch.
	OutcomeGeneric Outcome = iota
	// OutcomeParser selects a dedicated site parser by name.
	OutcomeParser
	// OutcomeBlocked marks hosts known to reject automated fetches; they are
	// handled from the URL alone, without any network access.
	OutcomeBlocked
)

// Profile describes how a host family is handled.
type Profile struct {
	Pattern string
	Outcome Outcome
	Parser  string
}

// The table is matched by substring, first hit wins. Blocked entries come
// first so e.g. glassdoor never reaches the fetch path.
var table = []Profile{
	{Pattern: "monster.com", Outcome: OutcomeBlocked},
	{Pattern: "monster.fr", Outcome: OutcomeBlocked},
	{Pattern: "glassdoor.com", Outcome: OutcomeBlocked},
	{Pattern: "glassdoor.fr", Outcome: OutcomeBlocked},
	{Pattern: "linkedin.com", Outcome: OutcomeParser, Parser: "linkedin"},
	{Pattern: "indeed.com", Outcome: OutcomeParser, Parser: "indeed"},
	{Pattern: "indeed.fr", Outcome: OutcomeParser, Parser: "indeed"},
	{Pattern: "welcometothejungle.com", Outcome: OutcomeParser, Parser: "wttj"},
}

// Classify resolves a hostname to its profile. Classification is pure and
// total: every hostname yields exactly one outcome, generic by default.
func Classify(host string) Profile {
	host = strings.ToLower(strings.TrimSpace(host))
	for _, p := range table {
		if strings.Contains(host, p.Pattern) {
			return p
		}
	}
	return Profile{Outcome: OutcomeGeneric}
}
