package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"gameshelf-sync-api/pkg/apierror"
)

// NewAdminKeyMiddleware guards the admin sync routes with a shared key,
// accepted as X-Admin-Key or a Bearer token. An empty configured key
// rejects everything; the sync routes are never open by accident.
func NewAdminKeyMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				writeError(w, apierror.Unauthorized("Admin access is not configured"))
				return
			}

			key := r.Header.Get("X-Admin-Key")
			if key == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					key = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if key == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use the X-Admin-Key header."))
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
				writeError(w, apierror.Unauthorized("Invalid admin key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
