package middleware

import (
	"net/http"
)

// DefaultMaxBodySize bounds request bodies on JSON endpoints.
const DefaultMaxBodySize int64 = 1 << 20 // 1MB

// RequestSize wraps request bodies with http.MaxBytesReader; bodies over
// maxBytes fail with 413 when read.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
