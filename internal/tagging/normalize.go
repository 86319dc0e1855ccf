// Package tagging implements the tag inference engine: text and tag
// normalization, rule-based inference, free-text extraction, profile
// derivation, canonicalization and score bumping.
//
// Every function in this package is pure and safe for concurrent use.
package tagging

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TagPrefix marks a canonical tag.
const TagPrefix = "#"

// Normalize lowercases text, strips diacritics, collapses whitespace runs
// into a single space and trims the result. It is used for matching only;
// stored tags keep their accents (see NormalizeTag).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// transform.Chain is stateful, so build one per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, strings.ToLower(text))
	if err != nil {
		stripped = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeTag converts a tag-like string into the canonical "#snake_case"
// form. It returns "" when nothing is left after trimming, including for a
// lone "#". Accents are preserved.
func NormalizeTag(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return ""
	}
	tag := strings.Join(fields, "_")
	if tag == TagPrefix {
		return ""
	}
	if !strings.HasPrefix(tag, TagPrefix) {
		tag = TagPrefix + tag
	}
	return tag
}

// NormalizeTags normalizes every element, drops empties and removes
// duplicates. The first occurrence of a tag decides its position.
func NormalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		t := NormalizeTag(r)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// appendUnique appends the tags of src not yet in seen.
func appendUnique(dst []string, seen map[string]struct{}, src ...string) []string {
	for _, t := range src {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		dst = append(dst, t)
	}
	return dst
}
