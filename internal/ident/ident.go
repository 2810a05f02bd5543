package ident

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans each token and joins them with newlines. It trims
// whitespace and lowercases, so ids typed with different casing or spacing
// produce the same form.
func Normalize(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		p := strings.ToLower(strings.TrimSpace(t))
		if p != "" {
			parts = append(parts, p)
		}
	}
	// Newline separation keeps ["ab", "c"] and ["a", "bc"] apart.
	return strings.Join(parts, "\n")
}

// Hash returns the SHA-256 of the normalized tokens as a hex string.
func Hash(tokens []string) string {
	hashBytes := sha256.Sum256([]byte(Normalize(tokens)))
	return fmt.Sprintf("%x", hashBytes)
}

// Short returns the first 12 characters of a hash, enough to address a drill by hand.
func Short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
