package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vikasavnish/movein/internal/db"
	"github.com/vikasavnish/movein/internal/pkg/response"
)

// HealthHandler responds to health check requests. It reports "degraded"
// with 503 when the database does not answer.
func HealthHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx, database); err != nil {
			log.Warn().Err(err).Msg("health check: database unreachable")
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}

		response.OK(w, map[string]string{
			"status":   "ok",
			"database": "ok",
		})
	}
}
