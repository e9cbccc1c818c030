package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
)

// Auth admits requests that present token as a Bearer credential or in the
// X-API-Key header. An empty token rejects every request.
func Auth(token string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(token))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				for _, got := range []string{extractBearer(r), r.Header.Get("X-API-Key")} {
					if got == "" {
						continue
					}
					sum := sha256.Sum256([]byte(got))
					if subtle.ConstantTimeCompare(sum[:], want[:]) == 1 {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			hlog.FromRequest(r).Debug().Str("path", r.URL.Path).Msg("rejected unauthenticated request")
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`))
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}
