package tagging

import "sort"

// Mapping associates a domain label with tags.
type Mapping struct {
	Label string
	Tags  []string
}

// SpecialtyMapping associates a tag with recommended professional specialties.
type SpecialtyMapping struct {
	Tag         string
	Specialties []string
}

var healthComplaintTags = []Mapping{
	{Label: "Ansiedade", Tags: []string{"#saude_mental", "#ansiedade"}},
	{Label: "Estresse", Tags: []string{"#saude_mental", "#estresse"}},
	{Label: "Tristeza frequente", Tags: []string{"#saude_mental", "#humor"}},
	{Label: "Insônia", Tags: []string{"#sono", "#saude_mental"}},
	{Label: "Sono agitado", Tags: []string{"#sono"}},
	{Label: "Sedentarismo", Tags: []string{"#fitness", "#cardio"}},
	{Label: "Sobrepeso", Tags: []string{"#alimentacao", "#fitness"}},
	{Label: "Seletividade alimentar", Tags: []string{"#alimentacao", "#nutricao"}},
	{Label: "Problemas digestivos", Tags: []string{"#alimentacao", "#digestao"}},
	{Label: "Dificuldade de concentração", Tags: []string{"#foco", "#estudos"}},
	{Label: "Dificuldade de aprendizagem", Tags: []string{"#estudos", "#aprendizagem"}},
	{Label: "Excesso de telas", Tags: []string{"#tempo_de_tela", "#foco"}},
	{Label: "Asma", Tags: []string{"#respiratorio"}},
	{Label: "Rinite", Tags: []string{"#respiratorio", "#alergia"}},
	{Label: "Alergias", Tags: []string{"#alergia"}},
	{Label: "Dor de cabeça", Tags: []string{"#dor", "#sono"}},
	{Label: "Timidez", Tags: []string{"#social", "#saude_mental"}},
	{Label: "Agressividade", Tags: []string{"#comportamento", "#saude_mental"}},
}

var neuroConditionTags = []Mapping{
	{Label: "TDAH", Tags: []string{"#tdah", "#neurodivergencia", "#foco"}},
	{Label: "TEA", Tags: []string{"#tea", "#neurodivergencia"}},
	{Label: "Autismo", Tags: []string{"#tea", "#neurodivergencia"}},
	{Label: "Dislexia", Tags: []string{"#dislexia", "#neurodivergencia", "#estudos"}},
	{Label: "Discalculia", Tags: []string{"#discalculia", "#neurodivergencia", "#estudos"}},
	{Label: "TOD", Tags: []string{"#tod", "#comportamento", "#neurodivergencia"}},
	{Label: "Altas habilidades", Tags: []string{"#altas_habilidades", "#neurodivergencia"}},
	{Label: "TOC", Tags: []string{"#toc", "#saude_mental", "#ansiedade"}},
	{Label: "Síndrome de Tourette", Tags: []string{"#tourette", "#neurodivergencia"}},
	{Label: "Transtorno do processamento sensorial", Tags: []string{"#sensorial", "#neurodivergencia"}},
}

var tagSpecialties = []SpecialtyMapping{
	{Tag: "#saude_mental", Specialties: []string{"Psicólogo", "Psiquiatra"}},
	{Tag: "#ansiedade", Specialties: []string{"Psicólogo TCC", "Psiquiatra"}},
	{Tag: "#estresse", Specialties: []string{"Psicólogo"}},
	{Tag: "#humor", Specialties: []string{"Psicólogo", "Psiquiatra"}},
	{Tag: "#sono", Specialties: []string{"Médico do Sono", "Pediatra"}},
	{Tag: "#fitness", Specialties: []string{"Educador Físico"}},
	{Tag: "#cardio", Specialties: []string{"Educador Físico", "Cardiologista"}},
	{Tag: "#alimentacao", Specialties: []string{"Nutricionista"}},
	{Tag: "#nutricao", Specialties: []string{"Nutricionista", "Fonoaudiólogo"}},
	{Tag: "#digestao", Specialties: []string{"Gastroenterologista", "Nutricionista"}},
	{Tag: "#foco", Specialties: []string{"Psicopedagogo"}},
	{Tag: "#estudos", Specialties: []string{"Psicopedagogo"}},
	{Tag: "#aprendizagem", Specialties: []string{"Psicopedagogo", "Fonoaudiólogo"}},
	{Tag: "#respiratorio", Specialties: []string{"Pneumologista"}},
	{Tag: "#alergia", Specialties: []string{"Alergista"}},
	{Tag: "#dor", Specialties: []string{"Neurologista"}},
	{Tag: "#social", Specialties: []string{"Psicólogo"}},
	{Tag: "#comportamento", Specialties: []string{"Psicólogo TCC"}},
	{Tag: "#tdah", Specialties: []string{"Neuropediatra", "Psicólogo TCC", "Psiquiatra"}},
	{Tag: "#neurodivergencia", Specialties: []string{"Neuropediatra"}},
	{Tag: "#tea", Specialties: []string{"Neuropediatra", "Terapeuta Ocupacional", "Fonoaudiólogo"}},
	{Tag: "#dislexia", Specialties: []string{"Fonoaudiólogo", "Psicopedagogo"}},
	{Tag: "#discalculia", Specialties: []string{"Psicopedagogo"}},
	{Tag: "#tod", Specialties: []string{"Psicólogo TCC", "Psiquiatra"}},
	{Tag: "#altas_habilidades", Specialties: []string{"Psicopedagogo", "Psicólogo"}},
	{Tag: "#toc", Specialties: []string{"Psicólogo TCC", "Psiquiatra"}},
	{Tag: "#tourette", Specialties: []string{"Neuropediatra"}},
	{Tag: "#sensorial", Specialties: []string{"Terapeuta Ocupacional"}},
}

var specialtiesByTag = func() map[string][]string {
	m := make(map[string][]string, len(tagSpecialties))
	for _, s := range tagSpecialties {
		m[NormalizeTag(s.Tag)] = s.Specialties
	}
	return m
}()

// ProfileInput carries the profile selections to derive tags from.
type ProfileInput struct {
	HealthComplaints []string `json:"health_complaints"`
	NeuroConditions  []string `json:"neuro_conditions"`
	ExtraTags        []string `json:"extra_tags"`
}

// ProfileTags is the result of DeriveSemanticTagsFromProfile.
type ProfileTags struct {
	SemanticTags                       []string `json:"semantic_tags"`
	RecommendedProfessionalSpecialties []string `json:"recommended_professional_specialties"`
}

// HealthComplaints returns the known health complaint labels in table order.
func HealthComplaints() []string { return labels(healthComplaintTags) }

// NeuroConditions returns the known neuro/condition labels in table order.
func NeuroConditions() []string { return labels(neuroConditionTags) }

// SpecialtiesFor returns the specialties recommended for tag.
func SpecialtiesFor(tag string) []string {
	return append([]string(nil), specialtiesByTag[NormalizeTag(tag)]...)
}

// DeriveSemanticTagsFromProfile maps complaint and condition selections to
// tags, adds the extra tags and looks up the specialties of every resulting
// tag. Labels are matched case and accent insensitively; unknown labels are
// ignored. The output does not depend on the order of the inputs.
func DeriveSemanticTagsFromProfile(in ProfileInput) ProfileTags {
	var working []string
	working = append(working, mappedTags(healthComplaintTags, in.HealthComplaints)...)
	working = append(working, mappedTags(neuroConditionTags, in.NeuroConditions)...)

	extra := NormalizeTags(in.ExtraTags)
	sort.Strings(extra)
	working = append(working, extra...)

	tags := NormalizeTags(working)

	specialties := []string{}
	seen := make(map[string]struct{})
	for _, t := range tags {
		specialties = appendUnique(specialties, seen, specialtiesByTag[t]...)
	}

	return ProfileTags{
		SemanticTags:                       tags,
		RecommendedProfessionalSpecialties: specialties,
	}
}

// mappedTags walks table in declaration order and collects the tags of every
// entry selected by one of the labels.
func mappedTags(table []Mapping, selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		want[Normalize(s)] = struct{}{}
	}
	var out []string
	for _, m := range table {
		if _, ok := want[Normalize(m.Label)]; ok {
			out = append(out, m.Tags...)
		}
	}
	return out
}

func labels(table []Mapping) []string {
	out := make([]string, len(table))
	for i, m := range table {
		out[i] = m.Label
	}
	return out
}
