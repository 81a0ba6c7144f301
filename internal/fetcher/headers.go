package fetcher

import (
	"math/rand"
	"net/http"
	"strings"
)

// Browser identities rotated across requests. Job boards fingerprint
// repeated identical clients aggressively.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:94.0) Gecko/20100101 Firefox/94.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:94.0) Gecko/20100101 Firefox/94.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.55 Safari/537.36 Edg/96.0.1054.43",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 15_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 12; SM-G991B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.104 Mobile Safari/537.36",
}

var referrers = []string{
	"https://www.google.com/",
	"https://www.google.fr/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
	"https://www.linkedin.com/",
	"https://www.indeed.com/",
}

// BrowserHeaders builds a randomized browser-like header set for the given
// host, with per-site tweaks for the boards that inspect client hints.
func BrowserHeaders(host string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Referer", referrers[rand.Intn(len(referrers))])
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("DNT", "1")

	switch {
	case strings.Contains(host, "linkedin"):
		h.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")
		h.Set("Sec-Ch-Ua", `"Google Chrome";v="105", "Not)A;Brand";v="8", "Chromium";v="105"`)
		h.Set("Sec-Ch-Ua-Mobile", "?0")
		h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	case strings.Contains(host, "indeed"):
		h.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")
		h.Set("Sec-Ch-Ua-Mobile", "?0")
	}
	return h
}
