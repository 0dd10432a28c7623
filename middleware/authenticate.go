package middleware

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/logger"
	"rovify-backend/response"
	"rovify-backend/session"
	"strings"
)

// Authenticate rejects requests without a valid bearer session and stores the user id on the context.
func Authenticate(issuer *session.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized().Send(ctx, w)
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				logger.Infof(ctx, "authenticate: rejecting token: %v", err)
				response.Unauthorized().Send(ctx, w)
				return
			}

			ctx = c.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identify stores the user id of a valid bearer session on the context and lets anonymous requests
// through unchanged.
func Identify(issuer *session.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := issuer.Parse(token); err == nil {
					r = r.WithContext(c.WithUserID(r.Context(), claims.Subject))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
