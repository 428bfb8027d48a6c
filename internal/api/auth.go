package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuth guards the loopback API with the token `memojo start` keeps in
// the secret store. An empty token rejects everything.
func BearerAuth(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(header, "Bearer ")
			if ok && len(want) > 0 && subtle.ConstantTimeCompare([]byte(got), want) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="memojo"`)
			msg := "invalid bearer token"
			if header == "" {
				msg = "missing bearer token; the CLI reads it from the secret store"
			}
			httpError(w, http.StatusUnauthorized, "authentication_error", "%s", msg)
		})
	}
}
