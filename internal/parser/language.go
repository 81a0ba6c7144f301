package parser

import "strings"

// frenchThreshold is deliberately a tunable, not a contract: the count above
// which a text is considered French.
const frenchThreshold = 3

var frenchKeywords = []string{
	"emploi", "poste", "entreprise", "travail",
	"société", "salaire", "expérience", "compétences",
}

// DetectLanguage infers en/fr from keyword frequency. Crude but cheap; the
// enrichment pass can refine it.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	count := 0
	for _, word := range frenchKeywords {
		count += strings.Count(lower, word)
	}
	if count > frenchThreshold {
		return "fr"
	}
	return "en"
}
