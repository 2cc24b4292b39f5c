package middlewares

import (
	"net/http"
	"strings"
)

// RequestSizeLimitMiddleware limits the size of request bodies
// Multipart uploads are forwarded to the platform file endpoint and get their own, larger limit
func RequestSizeLimitMiddleware(maxRequestSize, maxUploadSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxRequestSize
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				limit = maxUploadSize
			}

			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
