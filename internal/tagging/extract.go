package tagging

import (
	"regexp"
	"strings"
)

// DefaultExtractLimit is the number of tags ExtractFreeTextTags callers
// usually ask for.
const DefaultExtractLimit = 4

// maxBigramLen bounds the length of "word_next" bigram candidates.
const maxBigramLen = 30

// minWordLen is the shortest word kept as a candidate.
const minWordLen = 3

// nonWordRe matches characters that are deleted before tokenizing, so
// "auto-cuidado" becomes one word.
var nonWordRe = regexp.MustCompile(`[^a-z0-9\s]+`)

// stopwords are Portuguese function words. Words shorter than minWordLen
// are dropped anyway, so only longer ones matter here.
var stopwords = map[string]struct{}{
	"ante": {}, "apos": {}, "ate": {}, "com": {}, "contra": {}, "desde": {},
	"entre": {}, "para": {}, "pra": {}, "pro": {}, "perante": {}, "por": {},
	"sem": {}, "sob": {}, "sobre": {}, "tras": {},
	"das": {}, "dos": {}, "nas": {}, "nos": {}, "pela": {}, "pelas": {},
	"pelo": {}, "pelos": {}, "uma": {}, "umas": {}, "uns": {}, "num": {},
	"numa": {}, "dum": {}, "duma": {},
	"que": {}, "porque": {}, "pois": {}, "mas": {}, "porem": {}, "como": {},
	"quando": {}, "onde": {}, "nem": {}, "logo": {}, "entao": {}, "tambem": {},
	"mais": {}, "menos": {}, "muito": {}, "muita": {}, "muitos": {}, "muitas": {},
	"bem": {}, "ja": {}, "ainda": {}, "sempre": {}, "nunca": {}, "todo": {},
	"toda": {}, "todos": {}, "todas": {},
	"ele": {}, "ela": {}, "eles": {}, "elas": {}, "voce": {}, "voces": {},
	"meu": {}, "minha": {}, "meus": {}, "minhas": {}, "seu": {},
	"sua": {}, "seus": {}, "suas": {}, "nosso": {}, "nossa": {}, "isso": {},
	"isto": {}, "esse": {}, "essa": {}, "este": {}, "esta": {}, "aquele": {},
	"aquela": {}, "aqui": {}, "ali": {}, "cada": {},
	"ser": {}, "estar": {}, "ter": {}, "tem": {}, "foi": {}, "vai": {},
	"sao": {}, "era": {}, "fazer": {}, "faz": {},
}

// IsStopword reports whether word (already normalized) is a stopword.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// ExtractFreeTextTags tokenizes text and emits up to limit unigram and
// bigram tags. Unigrams and bigrams interleave in source order, so a
// bigram may take a slot before a later unigram is considered. Duplicates
// still count against limit while walking and are removed at the end.
func ExtractFreeTextTags(text string, limit int) []string {
	out := []string{}
	if limit <= 0 || strings.TrimSpace(text) == "" {
		return out
	}

	cleaned := nonWordRe.ReplaceAllString(Normalize(text), "")
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) < minWordLen || IsStopword(w) {
			continue
		}
		words = append(words, w)
	}

	candidates := make([]string, 0, limit)
	for i, w := range words {
		if len(candidates) < limit {
			candidates = append(candidates, NormalizeTag(w))
		}
		if i+1 >= len(words) {
			continue
		}
		next := words[i+1]
		if IsStopword(next) {
			continue
		}
		bigram := w + "_" + next
		if len(bigram) <= maxBigramLen && len(candidates) < limit {
			candidates = append(candidates, NormalizeTag(bigram))
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out = appendUnique(out, seen, candidates...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
