package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that caps request bodies at limit
// bytes. A request whose Content-Length already exceeds the limit never reaches
// next: onError receives an *http.MaxBytesError instead. Other bodies are
// wrapped in http.MaxBytesReader, so decoding fails with the same error type
// once the limit is crossed.
func NewMaxBodySizeHandler(limit int64, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				onError(w, r, &http.MaxBytesError{Limit: limit})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
