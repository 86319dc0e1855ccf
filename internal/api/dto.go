package api

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/taxon/internal/apperr"
	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/tagging"
)

// maxExtractLimit caps the limit accepted by POST /tags/extract.
const maxExtractLimit = 50

// validTag rejects values that normalize to no tag at all.
var validTag = validation.By(func(v any) error {
	s, _ := v.(string)
	if tagging.NormalizeTag(s) == "" {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidTag, s)
	}
	return nil
})

// TagsRequest carries raw tag strings.
type TagsRequest struct {
	Tags []string `json:"tags" example:"Rotina Diária,#sono"`
}

// TagsResponse carries normalized tags.
type TagsResponse struct {
	Tags []string `json:"tags" example:"#rotina_diária,#sono" validate:"required"`
}

// InferRequest is the request body for rule-based inference.
type InferRequest struct {
	Fragments []string `json:"fragments" example:"Correr no parque,antes do jantar"`
}

// ExtractRequest is the request body for free-text extraction.
type ExtractRequest struct {
	Text  string `json:"text" example:"Mais tempo em familia no fim de semana"`
	Limit int    `json:"limit,omitempty" example:"4"`
}

// Validate validates the extract request.
func (r ExtractRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Limit, validation.Min(0), validation.Max(maxExtractLimit)),
	)
}

// CanonicalizeRequest is the request body for synonym resolution.
type CanonicalizeRequest struct {
	Tag string `json:"tag" example:"corrida" validate:"required"`
}

// Validate validates the canonicalize request.
func (r CanonicalizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag, validation.Required, validTag),
	)
}

// CanonicalizeResponse carries the preferred form of a tag.
type CanonicalizeResponse struct {
	Tag string `json:"tag" example:"#cardio" validate:"required"`
}

// ProfileRequest is the request body for profile tag derivation.
type ProfileRequest = tagging.ProfileInput

// ProfileResponse is the derived profile tags and specialties.
type ProfileResponse = tagging.ProfileTags

// ProfileOptionsResponse lists the selectable profile labels.
type ProfileOptionsResponse struct {
	HealthComplaints []string `json:"health_complaints" validate:"required"`
	NeuroConditions  []string `json:"neuro_conditions" validate:"required"`
}

// TaxonomyResponse is a family's official tag set.
type TaxonomyResponse struct {
	FamilyID     string    `json:"family_id" example:"6f1c..." validate:"required"`
	OfficialTags []string  `json:"official_tags" example:"#familia,#sono" validate:"required"`
	Checksum     string    `json:"checksum" example:"ab12..." validate:"required"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func taxonomyResponse(t *catalog.Taxonomy) TaxonomyResponse {
	tags := t.OfficialTags
	if tags == nil {
		tags = []string{}
	}
	return TaxonomyResponse{
		FamilyID:     t.FamilyID,
		OfficialTags: tags,
		Checksum:     t.Checksum(),
		UpdatedAt:    t.UpdatedAt,
	}
}

// ReplaceTaxonomyRequest is the request body for replacing the official set.
type ReplaceTaxonomyRequest struct {
	OfficialTags []string `json:"official_tags" example:"#sono,#lazer"`
}

// Validate validates the replace request.
func (r ReplaceTaxonomyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OfficialTags, validation.NotNil, validation.Each(validTag)),
	)
}

// PromoteRequest is the request body for promoting a tag.
type PromoteRequest struct {
	Tag string `json:"tag" example:"#xadrez" validate:"required"`
}

// Validate validates the promote request.
func (r PromoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag, validation.Required, validTag),
	)
}

// SuggestionsResponse wraps ranked suggestion candidates.
type SuggestionsResponse struct {
	Suggestions []models.SuggestedTagCandidate `json:"suggestions" validate:"required"`
}

// TaggingRequest is the request body for recording a tagged entity.
type TaggingRequest models.TaggingEvent

// Validate validates the tagging request.
func (r TaggingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required,
			validation.In(models.EntityHabit, models.EntityReward, models.EntityProduct, models.EntityProfile)),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

// TaggingResponse is the outcome of a tagging event.
type TaggingResponse = models.TaggingResult

// ScoresResponse wraps a family's score board.
type ScoresResponse struct {
	Scores []models.ScoreEntry `json:"scores" validate:"required"`
}
