package catalog

import (
	"context"

	"github.com/starford/taxon/internal/models"
)

// Store persists taxonomies and score boards. Every method treats one
// family document atomically. Official tags resolve concurrent writers by
// last write; score updates never lose an increment.
// Methods return apperr.ErrNotFound for unknown families.
type Store interface {
	CreateFamily(ctx context.Context, familyID string, official []string) error
	GetTaxonomy(ctx context.Context, familyID string) (*Taxonomy, error)
	SetOfficialTags(ctx context.Context, familyID string, tags []string) error
	// GetSuggestedCandidates returns non-official tags sorted by descending
	// score, ties in first-observed order.
	GetSuggestedCandidates(ctx context.Context, familyID string, limit int) ([]models.SuggestedTagCandidate, error)
	// GetScores returns the score board in first-observed order.
	GetScores(ctx context.Context, familyID string) ([]models.ScoreEntry, error)
	// UpdateScores reads the score board, passes it to fn and upserts the
	// entries fn returns, all in one atomic step. Other entries are left
	// untouched and negative values are stored as zero.
	UpdateScores(ctx context.Context, familyID string, fn ScoreUpdate) error
	ResetScores(ctx context.Context, familyID string) error
	Close() error
}

// ScoreUpdate receives a copy of the current board and returns the entries
// to write.
type ScoreUpdate func(current map[string]int) map[string]int

// Notifier is told about committed catalog changes.
type Notifier interface {
	TaxonomyChanged(familyID string, official []string)
	ScoresChanged(familyID string)
}

// SynonymSource supplies the current synonym table (canonical tag to
// preferred tag).
type SynonymSource interface {
	Synonyms() map[string]string
}
