package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"Ação", "acao"},
		{"  Rotina   Diária\t\n ", "rotina diaria"},
		{"CAFÉ da Manhã", "cafe da manha"},
		{"já-é", "ja-e"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "Normalize(%q)", c.in)
	}
}

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"#", ""},
		{"  #  ", ""},
		{"fitness", "#fitness"},
		{"#Fitness", "#fitness"},
		{"Tempo   de Tela", "#tempo_de_tela"},
		// Accents are kept in stored tags.
		{"  Rotina Diária ", "#rotina_diária"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTag(c.in), "NormalizeTag(%q)", c.in)
	}
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	inputs := []string{"", " ", "#", "##", "a", "#a b", "Ação Rápida", "\tx\ny ", "#_", "__", "# a"}
	for _, in := range inputs {
		once := NormalizeTag(in)
		assert.Equal(t, once, NormalizeTag(once), "input %q", in)
		if once != "" {
			assert.NotEqual(t, TagPrefix, once)
			assert.True(t, len(once) > 1 && once[0] == '#', "tag %q must be prefixed", once)
		}
	}
}

func TestNormalizeTags_DedupKeepsFirst(t *testing.T) {
	got := NormalizeTags([]string{"Sono", "", "#fitness", "sono", "  ", "#Sono", "leitura"})
	require.Equal(t, []string{"#sono", "#fitness", "#leitura"}, got)
}

func TestNormalizeTags_Empty(t *testing.T) {
	assert.Empty(t, NormalizeTags(nil))
	assert.NotNil(t, NormalizeTags(nil))
}
