package tagging

// BumpTagScores returns a copy of current where the score of every tag in
// tags has been moved by amount and clamped at zero. Missing entries start
// at zero, a tag listed twice is bumped twice and current is never
// modified. Negative entries in current come out as zero. Use a negative
// amount when a tag is removed from an entity.
func BumpTagScores(current map[string]int, tags []string, amount int) map[string]int {
	next := make(map[string]int, len(current)+len(tags))
	for t, s := range current {
		next[t] = max(0, s)
	}
	for _, raw := range tags {
		t := NormalizeTag(raw)
		if t == "" {
			continue
		}
		next[t] = max(0, next[t]+amount)
	}
	return next
}

// DiffTags returns the tags of next missing from prev (added) and the tags
// of prev missing from next (removed). Both inputs are normalized first.
func DiffTags(prev, next []string) (added, removed []string) {
	p := NormalizeTags(prev)
	n := NormalizeTags(next)
	inPrev := make(map[string]struct{}, len(p))
	for _, t := range p {
		inPrev[t] = struct{}{}
	}
	inNext := make(map[string]struct{}, len(n))
	for _, t := range n {
		inNext[t] = struct{}{}
		if _, ok := inPrev[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range p {
		if _, ok := inNext[t]; !ok {
			removed = append(removed, t)
		}
	}
	return added, removed
}
