package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware requires a bearer token from tokens.
func AuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				httpError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if !validToken(tokens, token) {
				httpError(w, http.StatusUnauthorized, "token invalid or expired")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			return true
		}
	}
	return false
}
