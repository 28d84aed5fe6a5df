package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID assigns each request a uuid unless the client sent one. The ID
// rides on the X-Request-ID header in both directions for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
