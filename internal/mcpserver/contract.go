package mcpserver

// TagFormatContract describes the canonical tag format that LLM consumers
// should follow when proposing or promoting tags.
const TagFormatContract = `# Taxon Tag Format Contract

Every tag handled by Taxon is a normalized semantic tag.

## Format

- Starts with a single ` + "`#`" + ` followed by a non-empty body.
- Lowercase. Runs of whitespace become a single ` + "`_`" + `.
- Accents are kept in tags written by people (` + "`#rotina_diária`" + `).
  Tags produced by inference and free-text extraction are accent-free
  (` + "`#acao`" + `, ` + "`#alimentacao`" + `).
- Inputs with or without the leading ` + "`#`" + ` are accepted; ` + "`Sono`" + `,
  ` + "`#sono`" + ` and ` + "`  SONO `" + ` are the same tag.
- A value that is empty, blank or just ` + "`#`" + ` is not a tag.

## Sources

1. **Rules.** Trigger terms in a habit, reward or product name map to
   facet tags such as ` + "`#fitness`" + `, ` + "`#sono`" + ` or ` + "`#leitura`" + `. One term may
   yield several tags (` + "`correr`" + ` gives ` + "`#fitness`" + ` and ` + "`#cardio`" + `).
2. **Free text.** Content words of three or more letters that are not
   Portuguese stopwords become unigram tags; adjacent pairs become bigram
   tags (` + "`#tempo_familia`" + `) when no longer than 30 characters.
3. **Profile.** Health complaints and neurodevelopmental conditions map
   to tags and recommended professional specialties.
4. **Synonyms.** Aliases collapse into their preferred tag before scores
   are counted (one hop, no chains).

## Catalog

- Each family has a set of **official** tags, kept sorted and unique.
- Tags used on entities but not official accumulate a **score**. Scores
  never go below zero.
- **Suggestions** are non-official tags with a positive score, highest
  first, ties in the order the tags were first seen.
- Promoting an official tag or demoting an absent one changes nothing.

## Example

` + "```" + `json
{"kind": "habit", "name": "Correr no parque", "extra_tags": ["Ar Livre"]}
` + "```" + `

yields ` + "`#fitness`" + `, ` + "`#cardio`" + `, ` + "`#lazer`" + `, the free-text tags of the name
and ` + "`#ar_livre`" + `.
`
