package tagging

// CanonicalizeTag normalizes tag and resolves it through synonyms, which
// maps a canonical tag to its preferred form. Resolution is a single hop so cyclic
// tables cannot loop. A nil table leaves the normalized tag as is.
func CanonicalizeTag(tag string, synonyms map[string]string) string {
	t := NormalizeTag(tag)
	if t == "" || len(synonyms) == 0 {
		return t
	}
	target, ok := synonyms[t]
	if !ok {
		return t
	}
	if c := NormalizeTag(target); c != "" {
		return c
	}
	return t
}

// CanonicalizeTags canonicalizes every tag and removes duplicates created
// by synonyms collapsing onto the same form.
func CanonicalizeTags(tags []string, synonyms map[string]string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		c := CanonicalizeTag(t, synonyms)
		if c == "" {
			continue
		}
		out = appendUnique(out, seen, c)
	}
	return out
}
