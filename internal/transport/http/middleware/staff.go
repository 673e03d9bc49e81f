package middleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireStaff gates staff-only endpoints behind the X-Staff-Secret header.
// The comparison is constant-time. An empty configured secret disables the
// check — local development only; production deployments must set STAFF_SECRET.
func RequireStaff(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := r.Header.Get("X-Staff-Secret")
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					writeRefusal(w, http.StatusUnauthorized, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
