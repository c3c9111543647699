package middleware

import (
	"net/http"

	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
)

// MaxRequestSize caps request bodies at limit bytes. A declared Content-Length
// over the limit is rejected up front; chunked bodies fail on read with
// *http.MaxBytesError, which DecodeJSON reports as 413.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
