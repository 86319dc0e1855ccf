// Package catalog curates each family's official tag set and ranks the
// suggested candidates derived from usage scores.
package catalog

import (
	"slices"
	"time"

	"github.com/starford/taxon/internal/checksum"
	"github.com/starford/taxon/internal/tagging"
)

// DefaultOfficialTags seeds the taxonomy of a new family.
var DefaultOfficialTags = []string{
	"#alimentacao",
	"#cardio",
	"#criatividade",
	"#estudos",
	"#familia",
	"#financas",
	"#fitness",
	"#hidratacao",
	"#higiene",
	"#lazer",
	"#leitura",
	"#organizacao",
	"#responsabilidade",
	"#saude_mental",
	"#sono",
	"#tarefas_domesticas",
}

// Taxonomy is a family's curated set of official tags. OfficialTags is kept
// normalized, unique and sorted, so two taxonomies holding the same set
// compare equal.
type Taxonomy struct {
	FamilyID     string    `json:"family_id"`
	OfficialTags []string  `json:"official_tags"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewTaxonomy builds a taxonomy from arbitrary tag strings.
func NewTaxonomy(familyID string, tags []string) Taxonomy {
	return Taxonomy{FamilyID: familyID, OfficialTags: canonicalSet(tags)}
}

// Has reports whether tag is official.
func (t Taxonomy) Has(tag string) bool {
	_, found := slices.BinarySearch(t.OfficialTags, tagging.NormalizeTag(tag))
	return found
}

// Promote returns the taxonomy with tag added. It reports false and returns
// t unchanged when the tag normalizes to nothing or is already official.
func (t Taxonomy) Promote(tag string) (Taxonomy, bool) {
	n := tagging.NormalizeTag(tag)
	if n == "" {
		return t, false
	}
	i, found := slices.BinarySearch(t.OfficialTags, n)
	if found {
		return t, false
	}
	t.OfficialTags = slices.Insert(slices.Clone(t.OfficialTags), i, n)
	return t, true
}

// Add normalizes tag and promotes it.
func (t Taxonomy) Add(tag string) (Taxonomy, bool) {
	return t.Promote(tag)
}

// Demote returns the taxonomy without tag. Absent tags are a no-op.
func (t Taxonomy) Demote(tag string) (Taxonomy, bool) {
	i, found := slices.BinarySearch(t.OfficialTags, tagging.NormalizeTag(tag))
	if !found {
		return t, false
	}
	t.OfficialTags = slices.Delete(slices.Clone(t.OfficialTags), i, i+1)
	return t, true
}

// Checksum identifies the current official set.
func (t Taxonomy) Checksum() string {
	return checksum.Tags(t.OfficialTags)
}

func canonicalSet(tags []string) []string {
	out := tagging.NormalizeTags(tags)
	slices.Sort(out)
	return out
}
