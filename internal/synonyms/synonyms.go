// Package synonyms loads the tag synonym table and keeps it fresh.
//
// The file maps a preferred tag to the aliases that collapse into it:
//
//	synonyms:
//	  "#cardio": ["corrida", "#correr"]
//	  "#alimentacao": ["comida"]
//
// Keys and aliases are normalized with tagging.NormalizeTag. The loaded
// table maps each alias to its preferred tag, which is the shape
// tagging.CanonicalizeTag expects.
package synonyms

import (
	"fmt"
	"os"
	"slices"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/starford/taxon/internal/tagging"
)

type file struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// Parse decodes a synonym file into an alias to preferred tag table. An
// alias listed under two different preferred tags is an error.
func Parse(data []byte) (map[string]string, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("synonyms: decode: %w", err)
	}

	preferred := make([]string, 0, len(f.Synonyms))
	for k := range f.Synonyms {
		preferred = append(preferred, k)
	}
	slices.Sort(preferred)

	table := make(map[string]string)
	for _, raw := range preferred {
		target := tagging.NormalizeTag(raw)
		if target == "" {
			return nil, fmt.Errorf("synonyms: empty preferred tag %q", raw)
		}
		for _, a := range f.Synonyms[raw] {
			alias := tagging.NormalizeTag(a)
			if alias == "" || alias == target {
				continue
			}
			if prev, ok := table[alias]; ok && prev != target {
				return nil, fmt.Errorf("synonyms: alias %s maps to both %s and %s", alias, prev, target)
			}
			table[alias] = target
		}
	}
	return table, nil
}

// Load reads and parses the synonym file at path.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("synonyms: read %s: %w", path, err)
	}
	return Parse(data)
}

// Holder publishes the current table to concurrent readers. The zero value
// holds an empty table.
type Holder struct {
	table atomic.Pointer[map[string]string]
}

// NewHolder returns a holder seeded with table.
func NewHolder(table map[string]string) *Holder {
	h := &Holder{}
	h.Set(table)
	return h
}

// Synonyms returns the current table. Callers must not modify it.
func (h *Holder) Synonyms() map[string]string {
	if p := h.table.Load(); p != nil {
		return *p
	}
	return nil
}

// Set swaps in a new table.
func (h *Holder) Set(table map[string]string) {
	if table == nil {
		table = map[string]string{}
	}
	h.table.Store(&table)
}

// Reload loads path into the holder and returns the number of aliases.
// The previous table is kept when loading fails.
func (h *Holder) Reload(path string) (int, error) {
	table, err := Load(path)
	if err != nil {
		return 0, err
	}
	h.Set(table)
	return len(table), nil
}
