package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taxon/internal/catalog"
	"github.com/starford/taxon/internal/models"
	"github.com/starford/taxon/internal/tagging"
)

// Handler holds API route handlers.
type Handler struct {
	svc             *catalog.Service
	suggestionLimit int
}

// NewHandler creates a new Handler. suggestionLimit is the default page
// size of GET /families/{id}/suggestions; zero means unlimited.
func NewHandler(svc *catalog.Service, suggestionLimit int) *Handler {
	return &Handler{svc: svc, suggestionLimit: suggestionLimit}
}

func familyID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// tagParam extracts the {tag} path segment. Clients send "#" as %23.
func tagParam(r *http.Request) string {
	raw := chi.URLParam(r, "tag")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// NormalizeTags handles POST /api/tags/normalize.
//
//	@Summary		Normalize raw tag strings
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TagsRequest	true	"Raw tags"
//	@Success		200		{object}	TagsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/normalize [post]
func (h *Handler) NormalizeTags(w http.ResponseWriter, r *http.Request) {
	var req TagsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tagging.NormalizeTags(req.Tags)})
}

// InferTags handles POST /api/tags/infer.
//
//	@Summary		Infer semantic tags from free-text fragments
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InferRequest	true	"Text fragments"
//	@Success		200		{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags/infer [post]
func (h *Handler) InferTags(w http.ResponseWriter, r *http.Request) {
	var req InferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.InferTags(req.Fragments...)})
}

// ExtractTags handles POST /api/tags/extract.
//
//	@Summary		Extract unigram and bigram tags from text
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExtractRequest	true	"Text and limit"
//	@Success		200		{object}	TagsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/extract [post]
func (h *Handler) ExtractTags(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = tagging.DefaultExtractLimit
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.svc.ExtractTags(req.Text, limit)})
}

// CanonicalizeTag handles POST /api/tags/canonicalize.
//
//	@Summary		Resolve a tag through the synonym table
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CanonicalizeRequest	true	"Tag"
//	@Success		200		{object}	CanonicalizeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/canonicalize [post]
func (h *Handler) CanonicalizeTag(w http.ResponseWriter, r *http.Request) {
	var req CanonicalizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, CanonicalizeResponse{Tag: h.svc.Canonicalize(req.Tag)})
}

// ProfileTags handles POST /api/profile/tags.
//
//	@Summary		Derive tags and specialties from profile selections
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProfileRequest	true	"Profile selections"
//	@Success		200		{object}	ProfileResponse
//	@Security		BearerAuth
//	@Router			/profile/tags [post]
func (h *Handler) ProfileTags(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.DeriveProfileTags(req))
}

// ProfileOptions handles GET /api/profile/options.
//
//	@Summary		List selectable health complaints and neuro conditions
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	ProfileOptionsResponse
//	@Security		BearerAuth
//	@Router			/profile/options [get]
func (h *Handler) ProfileOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProfileOptionsResponse{
		HealthComplaints: tagging.HealthComplaints(),
		NeuroConditions:  tagging.NeuroConditions(),
	})
}

// CreateFamily handles POST /api/families.
//
//	@Summary		Register a family with the default official tags
//	@Tags			families
//	@Produce		json
//	@Success		201	{object}	TaxonomyResponse
//	@Security		BearerAuth
//	@Router			/families [post]
func (h *Handler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.CreateFamily(r.Context())
	if err != nil {
		writeServiceError(w, "create family", "", err)
		return
	}
	writeJSON(w, http.StatusCreated, taxonomyResponse(t))
}

// GetTaxonomy handles GET /api/families/{id}/taxonomy.
//
//	@Summary		Get the official tags of a family
//	@Tags			taxonomy
//	@Produce		json
//	@Param			id	path		string	true	"Family ID"
//	@Success		200	{object}	TaxonomyResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/taxonomy [get]
func (h *Handler) GetTaxonomy(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	t, err := h.svc.Taxonomy(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get taxonomy", id, err)
		return
	}
	resp := taxonomyResponse(t)
	w.Header().Set("ETag", `"`+resp.Checksum+`"`)
	writeJSON(w, http.StatusOK, resp)
}

// ReplaceTaxonomy handles PUT /api/families/{id}/taxonomy.
//
//	@Summary		Replace the official tag set with optimistic concurrency
//	@Tags			taxonomy
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string					true	"Family ID"
//	@Param			If-Match	header		string					false	"Checksum of the current set"
//	@Param			body		body		ReplaceTaxonomyRequest	true	"New official tags"
//	@Success		200			{object}	TaxonomyResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/taxonomy [put]
func (h *Handler) ReplaceTaxonomy(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	var req ReplaceTaxonomyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	t, err := h.svc.SetOfficialTags(r.Context(), id, req.OfficialTags, ifMatch)
	if err != nil {
		writeServiceError(w, "replace taxonomy", id, err)
		return
	}
	resp := taxonomyResponse(t)
	w.Header().Set("ETag", `"`+resp.Checksum+`"`)
	writeJSON(w, http.StatusOK, resp)
}

// PromoteTag handles POST /api/families/{id}/taxonomy/tags.
//
//	@Summary		Promote a tag to official
//	@Tags			taxonomy
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Family ID"
//	@Param			body	body		PromoteRequest	true	"Tag to promote"
//	@Success		200		{object}	TaxonomyResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/taxonomy/tags [post]
func (h *Handler) PromoteTag(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	var req PromoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.svc.PromoteTag(r.Context(), id, req.Tag)
	if err != nil {
		writeServiceError(w, "promote tag", id, err)
		return
	}
	writeJSON(w, http.StatusOK, taxonomyResponse(t))
}

// DemoteTag handles DELETE /api/families/{id}/taxonomy/tags/{tag}.
//
//	@Summary		Remove a tag from the official set
//	@Tags			taxonomy
//	@Produce		json
//	@Param			id	path		string	true	"Family ID"
//	@Param			tag	path		string	true	"Tag, with # encoded as %23"
//	@Success		200	{object}	TaxonomyResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/taxonomy/tags/{tag} [delete]
func (h *Handler) DemoteTag(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	t, err := h.svc.RemoveOfficialTag(r.Context(), id, tagParam(r))
	if err != nil {
		writeServiceError(w, "demote tag", id, err)
		return
	}
	writeJSON(w, http.StatusOK, taxonomyResponse(t))
}

// Suggestions handles GET /api/families/{id}/suggestions.
//
//	@Summary		Ranked non-official tag candidates
//	@Tags			taxonomy
//	@Produce		json
//	@Param			id		path		string	true	"Family ID"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SuggestionsResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	limit := h.suggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	sugg, err := h.svc.Suggestions(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, "suggestions", id, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: sugg})
}

// RecordTagging handles POST /api/families/{id}/tagging.
//
//	@Summary		Record a tagged entity creation or edit
//	@Tags			tagging
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Family ID"
//	@Param			body	body		TaggingRequest	true	"Entity"
//	@Success		200		{object}	TaggingResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/tagging [post]
func (h *Handler) RecordTagging(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	var req TaggingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.RecordTagging(r.Context(), id, models.TaggingEvent(req))
	if err != nil {
		writeServiceError(w, "record tagging", id, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Scores handles GET /api/families/{id}/scores.
//
//	@Summary		Score board in first-observed order
//	@Tags			tagging
//	@Produce		json
//	@Param			id	path		string	true	"Family ID"
//	@Success		200	{object}	ScoresResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/scores [get]
func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	scores, err := h.svc.Scores(r.Context(), id)
	if err != nil {
		writeServiceError(w, "scores", id, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoresResponse{Scores: scores})
}

// ResetScores handles DELETE /api/families/{id}/scores.
//
//	@Summary		Clear the score board
//	@Tags			tagging
//	@Param			id	path	string	true	"Family ID"
//	@Success		204
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/families/{id}/scores [delete]
func (h *Handler) ResetScores(w http.ResponseWriter, r *http.Request) {
	id := familyID(r)
	if err := h.svc.ResetScores(r.Context(), id); err != nil {
		writeServiceError(w, "reset scores", id, err)
		return
	}
	slog.Info("scores reset via api", slog.String("family_id", id))
	w.WriteHeader(http.StatusNoContent)
}
