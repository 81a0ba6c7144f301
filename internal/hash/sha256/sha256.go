// Package sha256 provides SHA-256 hashing helpers.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum hashes the input and returns a hex digest.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SumText hashes trimmed text. Used as the cache key for text-mode
// extraction requests, so leading/trailing whitespace does not split keys.
func SumText(text string) string {
	return Sum([]byte(strings.TrimSpace(text)))
}
