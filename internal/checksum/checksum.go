// Package checksum fingerprints note files for optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag renders the digest of data as a strong entity tag.
func ETag(data []byte) string {
	return `"` + Sum(data) + `"`
}

// Matches reports whether tag, a bare digest or an entity tag, names
// data. An empty tag or "*" matches anything.
func Matches(data []byte, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "*" {
		return true
	}
	tag = strings.TrimPrefix(tag, "W/")
	return strings.EqualFold(strings.Trim(tag, `"`), Sum(data))
}
