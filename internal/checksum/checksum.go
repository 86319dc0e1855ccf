// Package checksum computes content digests used as ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Tags returns a digest of a tag set that ignores element order.
func Tags(tags []string) string {
	sorted := slices.Clone(tags)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return Sum([]byte(strings.Join(sorted, "\n")))
}
