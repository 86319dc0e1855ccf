package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSemanticTagsFromProfile_AnxietyAndADHD(t *testing.T) {
	got := DeriveSemanticTagsFromProfile(ProfileInput{
		HealthComplaints: []string{"Ansiedade"},
		NeuroConditions:  []string{"TDAH"},
	})
	assert.Subset(t, got.SemanticTags, []string{"#saude_mental", "#ansiedade", "#tdah", "#neurodivergencia"})
	assert.Subset(t, got.RecommendedProfessionalSpecialties, []string{"Psicólogo", "Psiquiatra", "Neuropediatra", "Psicólogo TCC"})
}

func TestDeriveSemanticTagsFromProfile_OrderIndependent(t *testing.T) {
	a := DeriveSemanticTagsFromProfile(ProfileInput{
		HealthComplaints: []string{"Insônia", "Ansiedade", "Asma"},
		NeuroConditions:  []string{"Dislexia", "TDAH"},
		ExtraTags:        []string{"lazer", "#Leitura"},
	})
	b := DeriveSemanticTagsFromProfile(ProfileInput{
		HealthComplaints: []string{"Asma", "Ansiedade", "Insônia"},
		NeuroConditions:  []string{"TDAH", "Dislexia"},
		ExtraTags:        []string{"#Leitura", "lazer"},
	})
	assert.Equal(t, a, b)
}

func TestDeriveSemanticTagsFromProfile_LabelMatchingIsLenient(t *testing.T) {
	got := DeriveSemanticTagsFromProfile(ProfileInput{HealthComplaints: []string{"  insonia "}})
	assert.Contains(t, got.SemanticTags, "#sono")
}

func TestDeriveSemanticTagsFromProfile_UnknownSelections(t *testing.T) {
	got := DeriveSemanticTagsFromProfile(ProfileInput{
		HealthComplaints: []string{"Não existe"},
		NeuroConditions:  []string{""},
	})
	assert.Empty(t, got.SemanticTags)
	assert.Empty(t, got.RecommendedProfessionalSpecialties)
	assert.NotNil(t, got.SemanticTags)
	assert.NotNil(t, got.RecommendedProfessionalSpecialties)
}

func TestDeriveSemanticTagsFromProfile_ExtraTagsOnly(t *testing.T) {
	got := DeriveSemanticTagsFromProfile(ProfileInput{ExtraTags: []string{"Sono", "", "sono", "música"}})
	assert.Equal(t, []string{"#música", "#sono"}, got.SemanticTags)
	assert.Equal(t, []string{"Médico do Sono", "Pediatra"}, got.RecommendedProfessionalSpecialties)
}

func TestDeriveSemanticTagsFromProfile_NoDuplicates(t *testing.T) {
	got := DeriveSemanticTagsFromProfile(ProfileInput{
		HealthComplaints: []string{"Ansiedade", "Estresse", "Timidez"},
		NeuroConditions:  []string{"TOC"},
		ExtraTags:        []string{"#saude_mental"},
	})
	require.NotEmpty(t, got.SemanticTags)
	seen := map[string]bool{}
	for _, tag := range got.SemanticTags {
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
	seenSpec := map[string]bool{}
	for _, s := range got.RecommendedProfessionalSpecialties {
		assert.False(t, seenSpec[s], "duplicate specialty %q", s)
		seenSpec[s] = true
	}
}

func TestTablesUseCanonicalTags(t *testing.T) {
	for _, table := range [][]Mapping{healthComplaintTags, neuroConditionTags} {
		for _, m := range table {
			for _, tag := range m.Tags {
				assert.Equal(t, NormalizeTag(tag), tag, "label %s", m.Label)
			}
		}
	}
	for _, s := range tagSpecialties {
		assert.Equal(t, NormalizeTag(s.Tag), s.Tag)
	}
}

func TestLabelsAndSpecialtiesFor(t *testing.T) {
	assert.Contains(t, HealthComplaints(), "Ansiedade")
	assert.Contains(t, NeuroConditions(), "TDAH")
	assert.Equal(t, []string{"Neuropediatra", "Psicólogo TCC", "Psiquiatra"}, SpecialtiesFor("TDAH"))
	assert.Empty(t, SpecialtiesFor("#desconhecida"))
}
