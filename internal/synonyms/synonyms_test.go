package synonyms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/taxon/internal/tagging"
)

const sample = `
synonyms:
  "#cardio": ["corrida", "#Correr", "cardio", ""]
  alimentacao: ["comida", "Refeição Saudável"]
`

func TestParse(t *testing.T) {
	table, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"#corrida":           "#cardio",
		"#correr":            "#cardio",
		"#comida":            "#alimentacao",
		"#refeição_saudável": "#alimentacao",
	}, table)

	assert.Equal(t, "#cardio", tagging.CanonicalizeTag("Corrida", table))
	assert.Equal(t, "#alimentacao", tagging.CanonicalizeTag("refeição saudável", table))
}

func TestParse_ConflictingAlias(t *testing.T) {
	_, err := Parse([]byte(`
synonyms:
  "#cardio": ["corrida"]
  "#fitness": ["corrida"]
`))
	assert.Error(t, err)
}

func TestParse_EmptyPreferredTag(t *testing.T) {
	_, err := Parse([]byte(`
synonyms:
  "#": ["corrida"]
`))
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	table, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("synonyms: [unclosed"))
	assert.Error(t, err)
}

func TestHolder(t *testing.T) {
	var h Holder
	assert.Nil(t, h.Synonyms())

	h.Set(map[string]string{"#a": "#b"})
	assert.Equal(t, "#b", h.Synonyms()["#a"])

	h.Set(nil)
	assert.NotNil(t, h.Synonyms())
	assert.Empty(t, h.Synonyms())
}

func TestHolder_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	h := NewHolder(nil)
	n, err := h.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, os.WriteFile(path, []byte("synonyms: [unclosed"), 0o644))
	_, err = h.Reload(path)
	require.Error(t, err)
	assert.Equal(t, "#cardio", h.Synonyms()["#corrida"])

	_, err = h.Reload(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
