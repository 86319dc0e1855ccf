package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taxon/internal/catalog"
)

// AuthSettings configures bearer authentication of the API.
type AuthSettings struct {
	Enabled        bool
	Token          string
	ModeratorToken string
}

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, auth AuthSettings, suggestionLimit int, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, suggestionLimit)
	moderator := RequireModerator(auth.Enabled, auth.ModeratorToken)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(auth.Enabled, auth.Token, auth.ModeratorToken))

	// Engine.
	r.Post("/tags/normalize", h.NormalizeTags)
	r.Post("/tags/infer", h.InferTags)
	r.Post("/tags/extract", h.ExtractTags)
	r.Post("/tags/canonicalize", h.CanonicalizeTag)
	r.Post("/profile/tags", h.ProfileTags)
	r.Get("/profile/options", h.ProfileOptions)

	// Families and their catalog.
	r.Post("/families", h.CreateFamily)
	r.Route("/families/{id}", func(r chi.Router) {
		r.Get("/taxonomy", h.GetTaxonomy)
		r.Get("/suggestions", h.Suggestions)
		r.Post("/tagging", h.RecordTagging)
		r.Get("/scores", h.Scores)

		// Curation.
		r.Group(func(r chi.Router) {
			r.Use(moderator)
			r.Put("/taxonomy", h.ReplaceTaxonomy)
			r.Post("/taxonomy/tags", h.PromoteTag)
			r.Delete("/taxonomy/tags/{tag}", h.DemoteTag)
			r.Delete("/scores", h.ResetScores)
		})
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
