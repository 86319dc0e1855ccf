package catalog

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/models"
)

// MemoryStore is an in-process Store. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	families map[string]*memFamily
	now      func() time.Time
}

type memFamily struct {
	official  []string
	updatedAt time.Time
	scores    map[string]int
	firstSeen map[string]time.Time
	order     []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{families: make(map[string]*memFamily), now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) family(id string) (*memFamily, error) {
	f, ok := m.families[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return f, nil
}

// CreateFamily implements Store.
func (m *MemoryStore) CreateFamily(_ context.Context, familyID string, official []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.families[familyID]; ok {
		return apperr.ErrAlreadyExists
	}
	m.families[familyID] = &memFamily{
		official:  canonicalSet(official),
		updatedAt: m.now(),
		scores:    make(map[string]int),
		firstSeen: make(map[string]time.Time),
	}
	return nil
}

// GetTaxonomy implements Store.
func (m *MemoryStore) GetTaxonomy(_ context.Context, familyID string) (*Taxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, err := m.family(familyID)
	if err != nil {
		return nil, err
	}
	return &Taxonomy{FamilyID: familyID, OfficialTags: slices.Clone(f.official), UpdatedAt: f.updatedAt}, nil
}

// SetOfficialTags implements Store.
func (m *MemoryStore) SetOfficialTags(_ context.Context, familyID string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.family(familyID)
	if err != nil {
		return err
	}
	f.official = canonicalSet(tags)
	f.updatedAt = m.now()
	return nil
}

// GetSuggestedCandidates implements Store.
func (m *MemoryStore) GetSuggestedCandidates(_ context.Context, familyID string, limit int) ([]models.SuggestedTagCandidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, err := m.family(familyID)
	if err != nil {
		return nil, err
	}
	return RankSuggestions(f.entries(), f.official, limit), nil
}

// GetScores implements Store.
func (m *MemoryStore) GetScores(_ context.Context, familyID string) ([]models.ScoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, err := m.family(familyID)
	if err != nil {
		return nil, err
	}
	return f.entries(), nil
}

// UpdateScores implements Store.
func (m *MemoryStore) UpdateScores(_ context.Context, familyID string, fn ScoreUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.family(familyID)
	if err != nil {
		return err
	}
	scores := fn(maps.Clone(f.scores))
	// Sorted so that tags first seen in the same call get a stable order.
	tags := make([]string, 0, len(scores))
	for t := range scores {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	now := m.now()
	for _, t := range tags {
		if _, ok := f.scores[t]; !ok {
			f.order = append(f.order, t)
			f.firstSeen[t] = now
		}
		f.scores[t] = max(0, scores[t])
	}
	return nil
}

// ResetScores implements Store.
func (m *MemoryStore) ResetScores(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.family(familyID)
	if err != nil {
		return err
	}
	f.scores = make(map[string]int)
	f.firstSeen = make(map[string]time.Time)
	f.order = nil
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

func (f *memFamily) entries() []models.ScoreEntry {
	out := make([]models.ScoreEntry, 0, len(f.order))
	for _, t := range f.order {
		out = append(out, models.ScoreEntry{Tag: t, Score: f.scores[t], FirstSeen: f.firstSeen[t]})
	}
	return out
}
