package middleware

import (
	"net/http"

	"github.com/campuspub/publication-portal/pkg/logger"

	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// RequestID attaches a trace id to the request context and echoes it on the
// response. An id supplied by the caller is trusted as-is.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(traceHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(traceHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.With(r.Context(), "traceID", id)))
	})
}
