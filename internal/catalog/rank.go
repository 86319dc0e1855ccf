package catalog

import (
	"cmp"
	"slices"

	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/tagging"
)

// RankSuggestions turns a score board into suggested candidates. entries
// must be in first-observed order; ties keep that order. Official tags and
// zero scores are dropped. A limit of zero or less returns every candidate.
func RankSuggestions(entries []models.ScoreEntry, official []string, limit int) []models.SuggestedTagCandidate {
	skip := make(map[string]struct{}, len(official))
	for _, t := range official {
		skip[tagging.NormalizeTag(t)] = struct{}{}
	}

	out := make([]models.SuggestedTagCandidate, 0, len(entries))
	for _, e := range entries {
		if e.Score <= 0 {
			continue
		}
		if _, ok := skip[e.Tag]; ok {
			continue
		}
		out = append(out, models.SuggestedTagCandidate{Tag: e.Tag, Count: e.Score})
	}
	slices.SortStableFunc(out, func(a, b models.SuggestedTagCandidate) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
