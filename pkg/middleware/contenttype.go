package middleware

import (
	"mime"
	"net/http"

	"github.com/Sagar-1103/taskify/pkg/httputil"
)

// RequireJSON rejects requests that carry a body with a non-JSON content type.
// Bodyless requests (GET, DELETE, an empty logout POST) pass through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				httputil.Fail(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
