package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSemanticTags_RunningAtTheGym(t *testing.T) {
	got := InferSemanticTags("Foi correr na academia hoje")
	assert.Equal(t, []string{"#fitness", "#cardio"}, got)
}

func TestInferSemanticTags_AccentInsensitive(t *testing.T) {
	assert.Contains(t, InferSemanticTags("MEDITACAO guiada"), "#mindfulness")
	assert.Contains(t, InferSemanticTags("Meditação guiada"), "#mindfulness")
}

func TestInferSemanticTags_MultipleFragments(t *testing.T) {
	got := InferSemanticTags("Ler um livro", "", "antes de dormir")
	assert.ElementsMatch(t, []string{"#leitura", "#sono"}, got)
}

func TestInferSemanticTags_NoMatch(t *testing.T) {
	got := InferSemanticTags("xyz qwerty")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInferSemanticTags_EmptyInputs(t *testing.T) {
	assert.Empty(t, InferSemanticTags())
	assert.Empty(t, InferSemanticTags("", "   ", "\n"))
}

func TestInferSemanticTags_PermutationInvariant(t *testing.T) {
	a := InferSemanticTags("escovar os dentes", "arrumar a cama", "beber água")
	b := InferSemanticTags("beber água", "escovar os dentes", "arrumar a cama")
	assert.ElementsMatch(t, a, b)
	assert.Equal(t, a, b, "output order follows the rule table")
}

func TestInferSemanticTags_NoDuplicates(t *testing.T) {
	got := InferSemanticTags("correr corrida correr academia treino")
	seen := map[string]bool{}
	for _, tag := range got {
		assert.False(t, seen[tag], "duplicate %q", tag)
		seen[tag] = true
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	r := Rules()
	require.NotEmpty(t, r)
	r[0].Terms[0] = "mutated"
	r[0].Tag = "#mutated"
	assert.NotEqual(t, "mutated", Rules()[0].Terms[0])
	assert.NotEqual(t, "#mutated", Rules()[0].Tag)
}

func TestRules_TagsAreCanonical(t *testing.T) {
	for _, r := range Rules() {
		assert.Equal(t, NormalizeTag(r.Tag), r.Tag)
		assert.NotEmpty(t, r.Terms, "rule %s has no terms", r.Tag)
	}
}
