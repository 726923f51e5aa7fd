// Package api implements the nnote REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/nnote/internal/auth"
)

// bearerToken returns the credential a request carries. Browsers cannot
// set headers on an EventSource, so the access_token query parameter is
// accepted as well.
func bearerToken(r *http.Request) (string, bool) {
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return tok, true
	}
	if tok := r.URL.Query().Get("access_token"); tok != "" {
		return tok, true
	}
	return "", false
}

// AuthMiddleware rejects requests without the configured bearer token,
// given either in clear or as a bcrypt hash. With enabled false every
// request passes.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	verifier := auth.NewVerifier(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := bearerToken(r)
			if !ok || !verifier.Verify(got) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="nnote"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
