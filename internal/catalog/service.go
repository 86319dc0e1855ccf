package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/metrics"
	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/tagging"
)

// Service coordinates the engine, the store and change notifications.
type Service struct {
	store        Store
	synonyms     SynonymSource
	notifier     Notifier
	logger       *slog.Logger
	defaults     []string
	extractLimit int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSynonyms sets the synonym table used to canonicalize tags.
func WithSynonyms(src SynonymSource) ServiceOption {
	return func(s *Service) { s.synonyms = src }
}

// WithNotifier sets the receiver of change notifications.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithDefaultOfficialTags overrides the tags new families start with.
func WithDefaultOfficialTags(tags []string) ServiceOption {
	return func(s *Service) { s.defaults = tags }
}

// WithExtractLimit sets how many free-text tags a tagging event may produce.
func WithExtractLimit(n int) ServiceOption {
	return func(s *Service) { s.extractLimit = n }
}

// NewService creates a catalog service on top of store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:        store,
		logger:       slog.Default(),
		defaults:     DefaultOfficialTags,
		extractLimit: tagging.DefaultExtractLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) synonymTable() map[string]string {
	if s.synonyms == nil {
		return nil
	}
	return s.synonyms.Synonyms()
}

// Canonicalize resolves tag through the current synonym table.
func (s *Service) Canonicalize(tag string) string {
	return tagging.CanonicalizeTag(tag, s.synonymTable())
}

// InferTags runs rule-based inference and canonicalizes the result.
func (s *Service) InferTags(fragments ...string) []string {
	tags := tagging.InferSemanticTags(fragments...)
	metrics.RecordInferred(metrics.SourceRules, len(tags))
	return tagging.CanonicalizeTags(tags, s.synonymTable())
}

// ExtractTags runs free-text extraction and canonicalizes the result.
// Canonicalization may merge tags, so the result never exceeds limit.
func (s *Service) ExtractTags(text string, limit int) []string {
	tags := tagging.ExtractFreeTextTags(text, limit)
	metrics.RecordInferred(metrics.SourceFreeText, len(tags))
	return tagging.CanonicalizeTags(tags, s.synonymTable())
}

// DeriveProfileTags maps profile selections to tags and specialties.
func (s *Service) DeriveProfileTags(in tagging.ProfileInput) tagging.ProfileTags {
	out := tagging.DeriveSemanticTagsFromProfile(in)
	metrics.RecordInferred(metrics.SourceProfile, len(out.SemanticTags))
	return out
}

// EntityTags computes the tags of a tagged entity: rule inference over its
// name and description, free-text extraction over the same text and the
// explicit extra tags, all canonicalized.
func (s *Service) EntityTags(ev models.TaggingEvent) []string {
	var all []string
	all = append(all, tagging.InferSemanticTags(ev.Name, ev.Description)...)
	all = append(all, tagging.ExtractFreeTextTags(strings.TrimSpace(ev.Name+" "+ev.Description), s.extractLimit)...)
	extra := tagging.NormalizeTags(ev.ExtraTags)
	metrics.RecordInferred(metrics.SourceExtra, len(extra))
	all = append(all, extra...)
	return tagging.CanonicalizeTags(all, s.synonymTable())
}

// CreateFamily registers a new family seeded with the default official tags.
func (s *Service) CreateFamily(ctx context.Context) (*Taxonomy, error) {
	id := uuid.NewString()
	if err := s.store.CreateFamily(ctx, id, s.defaults); err != nil {
		return nil, fmt.Errorf("catalog: create family: %w", err)
	}
	s.logger.Info("catalog: family created", slog.String("family_id", id))
	return s.store.GetTaxonomy(ctx, id)
}

// Taxonomy returns the official tags of a family.
func (s *Service) Taxonomy(ctx context.Context, familyID string) (*Taxonomy, error) {
	return s.store.GetTaxonomy(ctx, familyID)
}

// PromoteTag makes tag official. Promoting an official tag or a tag that
// normalizes to nothing leaves the taxonomy unchanged.
func (s *Service) PromoteTag(ctx context.Context, familyID, tag string) (*Taxonomy, error) {
	return s.mutate(ctx, "promote", familyID, "", func(t Taxonomy) (Taxonomy, bool) {
		return t.Promote(tag)
	})
}

// AddOfficialTag normalizes an arbitrary new tag and promotes it.
func (s *Service) AddOfficialTag(ctx context.Context, familyID, tag string) (*Taxonomy, error) {
	return s.PromoteTag(ctx, familyID, tag)
}

// RemoveOfficialTag demotes tag. Absent tags are a no-op.
func (s *Service) RemoveOfficialTag(ctx context.Context, familyID, tag string) (*Taxonomy, error) {
	return s.mutate(ctx, "demote", familyID, "", func(t Taxonomy) (Taxonomy, bool) {
		return t.Demote(tag)
	})
}

// SetOfficialTags replaces the whole official set. When ifMatch is not
// empty it must equal the checksum of the current set.
func (s *Service) SetOfficialTags(ctx context.Context, familyID string, tags []string, ifMatch string) (*Taxonomy, error) {
	return s.mutate(ctx, "replace", familyID, ifMatch, func(t Taxonomy) (Taxonomy, bool) {
		next := NewTaxonomy(familyID, tags)
		next.UpdatedAt = t.UpdatedAt
		return next, next.Checksum() != t.Checksum()
	})
}

// mutate runs a read-modify-write of a family taxonomy. Nothing is written
// when fn reports no change. A non-empty ifMatch must equal the checksum of
// the stored set.
func (s *Service) mutate(ctx context.Context, op, familyID, ifMatch string, fn func(Taxonomy) (Taxonomy, bool)) (*Taxonomy, error) {
	cur, err := s.store.GetTaxonomy(ctx, familyID)
	if err != nil {
		metrics.RecordMutation(op, false, err)
		return nil, err
	}
	if ifMatch != "" && ifMatch != cur.Checksum() {
		metrics.RecordMutation(op, false, apperr.ErrConflict)
		return nil, apperr.ErrConflict
	}

	next, changed := fn(*cur)
	if !changed {
		metrics.RecordMutation(op, false, nil)
		return cur, nil
	}
	if err := s.store.SetOfficialTags(ctx, familyID, next.OfficialTags); err != nil {
		metrics.RecordMutation(op, true, err)
		return nil, fmt.Errorf("catalog: %s: %w", op, err)
	}
	metrics.RecordMutation(op, true, nil)
	s.logger.Info("catalog: taxonomy updated",
		slog.String("family_id", familyID),
		slog.String("op", op),
		slog.Int("official_tags", len(next.OfficialTags)))
	if s.notifier != nil {
		s.notifier.TaxonomyChanged(familyID, next.OfficialTags)
	}
	return s.store.GetTaxonomy(ctx, familyID)
}

// Suggestions returns the ranked non-official candidates of a family.
func (s *Service) Suggestions(ctx context.Context, familyID string, limit int) ([]models.SuggestedTagCandidate, error) {
	return s.store.GetSuggestedCandidates(ctx, familyID, limit)
}

// Scores returns the score board of a family in first-observed order.
func (s *Service) Scores(ctx context.Context, familyID string) ([]models.ScoreEntry, error) {
	return s.store.GetScores(ctx, familyID)
}

// RecordTagging computes the tags of a created or edited entity and bumps
// the score board: +1 for every tag the entity gained and -1 for every tag
// it lost compared with ev.PreviousTags.
func (s *Service) RecordTagging(ctx context.Context, familyID string, ev models.TaggingEvent) (*models.TaggingResult, error) {
	tags := s.EntityTags(ev)
	added, removed := tagging.DiffTags(tagging.CanonicalizeTags(ev.PreviousTags, s.synonymTable()), tags)
	res := &models.TaggingResult{
		Tags:    tags,
		Added:   nonNilSlice(added),
		Removed: nonNilSlice(removed),
	}

	if len(added) == 0 && len(removed) == 0 {
		if _, err := s.store.GetTaxonomy(ctx, familyID); err != nil {
			return nil, err
		}
		return res, nil
	}

	err := s.store.UpdateScores(ctx, familyID, func(current map[string]int) map[string]int {
		next := tagging.BumpTagScores(current, added, 1)
		next = tagging.BumpTagScores(next, removed, -1)

		changed := make(map[string]int, len(added)+len(removed))
		for _, t := range added {
			changed[t] = next[t]
		}
		for _, t := range removed {
			changed[t] = next[t]
		}
		return changed
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: record tagging: %w", err)
	}

	metrics.RecordBumps(ev.Kind, len(added), len(removed))
	s.logger.Debug("catalog: scores bumped",
		slog.String("family_id", familyID),
		slog.String("kind", ev.Kind),
		slog.Int("added", len(added)),
		slog.Int("removed", len(removed)))
	if s.notifier != nil {
		s.notifier.ScoresChanged(familyID)
	}
	return res, nil
}

// ResetScores clears the whole score board of a family.
func (s *Service) ResetScores(ctx context.Context, familyID string) error {
	if err := s.store.ResetScores(ctx, familyID); err != nil {
		metrics.RecordMutation("reset_scores", false, err)
		return err
	}
	metrics.RecordMutation("reset_scores", true, nil)
	s.logger.Info("catalog: scores reset", slog.String("family_id", familyID))
	if s.notifier != nil {
		s.notifier.ScoresChanged(familyID)
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
