package handlers

import (
	"log/slog"
	"net/http"

	"github.com/planetmint/planetmint-driver-go/internal/api"
	"github.com/planetmint/planetmint-driver-go/internal/logger"
)

// HandleHealth answers the liveness probe.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	api.RespondWithJSONPayload(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// HandleReadiness answers 200 while ping succeeds and 503 otherwise.
func HandleReadiness(ping func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(); err != nil {
			logger.ContextWithLogAttrs(r.Context(), slog.String("readiness_error", err.Error()))
			api.RespondWithJSONPayload(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "not ready"})
			return
		}
		api.RespondWithJSONPayload(w, http.StatusOK, api.HealthResponse{Status: "ready"})
	}
}
