package middleware

import (
	"net/http"
	c "rovify-backend/context"
	"strings"

	"github.com/google/uuid"
)

const (
	correlationHeader  = "Correlation-Id"
	maxCorrelationSize = 128
)

// SetCorrelationIDHeader tags the request context with the caller's Correlation-Id, or a fresh one,
// and echoes it on the response.
func SetCorrelationIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" || len(id) > maxCorrelationSize {
			id = uuid.NewString()
			r.Header.Set(correlationHeader, id)
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(c.SetContextWithValue(r.Context(), c.ContextKeyCorrelationID, id)))
	})
}
