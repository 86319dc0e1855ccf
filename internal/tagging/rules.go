package tagging

import "strings"

// Rule maps a tag to the trigger terms that infer it.
type Rule struct {
	Tag   string
	Terms []string
}

// rules is the inference table. Tags are independent facets, so a single
// term may appear under several rules.
var rules = []Rule{
	{Tag: "#fitness", Terms: []string{"academia", "treino", "treinar", "musculação", "malhar", "exercício", "correr", "corrida", "crossfit", "pilates", "ginástica", "alongamento", "futebol", "vôlei", "basquete", "esporte"}},
	{Tag: "#cardio", Terms: []string{"correr", "corrida", "caminhada", "caminhar", "bicicleta", "pedalar", "natação", "nadar", "esteira", "pular corda", "dançar", "dança"}},
	{Tag: "#sono", Terms: []string{"dormir", "sono", "cochilo", "soneca", "deitar cedo", "hora de deitar", "acordar cedo"}},
	{Tag: "#alimentacao", Terms: []string{"comer", "refeição", "almoço", "jantar", "café da manhã", "lanche", "fruta", "verdura", "legume", "salada", "alimentação", "dieta"}},
	{Tag: "#hidratacao", Terms: []string{"beber água", "tomar água", "garrafa de água", "hidratar", "hidratação"}},
	{Tag: "#estudos", Terms: []string{"estudar", "estudo", "lição", "dever de casa", "tarefa escolar", "escola", "prova", "revisar", "matemática", "redação"}},
	{Tag: "#leitura", Terms: []string{"ler", "leitura", "livro", "gibi"}},
	{Tag: "#higiene", Terms: []string{"escovar", "dente", "banho", "lavar as mãos", "fio dental", "higiene", "cortar as unhas"}},
	{Tag: "#organizacao", Terms: []string{"arrumar", "organizar", "guardar", "cama", "mochila", "agenda"}},
	{Tag: "#tarefas_domesticas", Terms: []string{"louça", "varrer", "lixo", "roupa", "aspirar", "limpar", "regar"}},
	{Tag: "#saude_mental", Terms: []string{"meditar", "meditação", "respirar", "respiração", "terapia", "ansiedade", "emoção", "sentimento"}},
	{Tag: "#mindfulness", Terms: []string{"meditar", "meditação", "respiração", "gratidão", "diário", "silêncio"}},
	{Tag: "#familia", Terms: []string{"família", "familia", "pais", "mãe", "pai", "irmão", "irmã", "avó", "avô"}},
	{Tag: "#social", Terms: []string{"amigo", "amiga", "amizade", "visitar", "festa", "conversar"}},
	{Tag: "#lazer", Terms: []string{"brincar", "jogo", "passeio", "parque", "filme", "cinema", "praia"}},
	{Tag: "#tempo_de_tela", Terms: []string{"celular", "tablet", "televisão", "videogame", "tela", "youtube", "computador"}},
	{Tag: "#financas", Terms: []string{"dinheiro", "mesada", "poupar", "economizar", "cofrinho", "guardar dinheiro"}},
	{Tag: "#criatividade", Terms: []string{"desenhar", "desenho", "pintar", "pintura", "música", "tocar", "instrumento", "artesanato", "massinha"}},
	{Tag: "#responsabilidade", Terms: []string{"pontualidade", "compromisso", "responsabilidade", "cuidar do pet", "alimentar o cachorro", "alimentar o gato"}},
	{Tag: "#autocuidado", Terms: []string{"autocuidado", "descansar", "relaxar", "skincare", "hidratante"}},
}

// compiledRule holds a rule with its terms already normalized.
type compiledRule struct {
	tag   string
	terms []string
}

var compiledRules = compileRules(rules)

func compileRules(in []Rule) []compiledRule {
	out := make([]compiledRule, 0, len(in))
	for _, r := range in {
		cr := compiledRule{tag: NormalizeTag(r.Tag)}
		for _, term := range r.Terms {
			if n := Normalize(term); n != "" {
				cr.terms = append(cr.terms, n)
			}
		}
		out = append(out, cr)
	}
	return out
}

// Rules returns a copy of the inference table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Tag: r.Tag, Terms: append([]string(nil), r.Terms...)}
	}
	return out
}

// InferSemanticTags joins the non-empty fragments with a space, normalizes
// the result once and returns the tag of every rule that has at least one
// term occurring in it. The result is a set; its order follows the rule
// table. No match yields an empty, non-nil slice.
func InferSemanticTags(fragments ...string) []string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f) == "" {
			continue
		}
		parts = append(parts, f)
	}
	out := []string{}
	if len(parts) == 0 {
		return out
	}
	text := Normalize(strings.Join(parts, " "))

	seen := make(map[string]struct{})
	for _, r := range compiledRules {
		for _, term := range r.terms {
			if strings.Contains(text, term) {
				out = appendUnique(out, seen, r.tag)
				break
			}
		}
	}
	return out
}
