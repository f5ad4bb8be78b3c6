package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeText canonicalises text before fingerprinting: CRLF becomes
// LF, trailing whitespace is stripped per line, and leading/trailing
// blank lines are removed. Two documents that differ only in line
// endings or trailing spaces hash identically, so they never trigger a
// re-embed.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// HashText returns the hex SHA-256 fingerprint of the normalised text.
// It is the change-detection key for documents and the cache key for
// chunks, and is stable across runs and machines.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}
