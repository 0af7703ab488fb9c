package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const healthPingTimeout = 2 * time.Second

type healthStatus struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

// Healthcheck reports liveness plus database reachability. It always answers 200.
func Healthcheck(database db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", DB: "ok"}
		if database == nil {
			status.DB = "error"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := database.Ping(ctx); err != nil {
				status.DB = "error"
				if logg != nil {
					logg.Error(r.Context(), "healthcheck database ping failed", err)
				}
			}
		}
		responses.WriteJSON(w, http.StatusOK, status)
	}
}
