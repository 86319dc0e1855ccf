// Package api implements the taxon REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

func tokenEqual(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry "Authorization: Bearer <token>"
// with one of the accepted tokens.
func AuthMiddleware(enabled bool, tokens ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearerToken(r)
			if ok {
				for _, want := range tokens {
					if tokenEqual(got, want) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		})
	}
}

// RequireModerator guards curation routes. With auth disabled, or without a
// dedicated moderator token, every authenticated caller may curate.
func RequireModerator(enabled bool, moderatorToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || moderatorToken == "" {
				next.ServeHTTP(w, r)
				return
			}
			if got, _ := bearerToken(r); !tokenEqual(got, moderatorToken) {
				writeJSON(w, http.StatusForbidden, errorBody("moderator token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
