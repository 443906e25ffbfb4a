package middleware

import (
	"net/http"
)

// ReadOnlyMiddleware blocks mutating requests when the server runs as a demo
// instance, except for the auth endpoints needed to look around.
func ReadOnlyMiddleware(readOnly bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/login":    true,
		"/api/register": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if readOnly && r.Method != http.MethodGet {
				if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "read-only mode: only GET requests are allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
