package healthcheck

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/factory"
	"rovify-backend/logger"
	"rovify-backend/response"
	"time"
)

const pingTimeout = 3 * time.Second

type status struct {
	Database string `json:"database"`
}

// Self reports whether the service can reach its database.
func Self(f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := c.NewContextWithTimeOut(r.Context(), pingTimeout)
		defer cancel()

		if err := f.DB(ctx).PingContext(ctx); err != nil {
			logger.Errorf(ctx, "self: database ping failed: %+v", err)
			response.ServiceUnavailable("Database is unreachable").Send(ctx, w)
			return
		}
		response.OK(w, status{Database: "ok"})
	}
}
