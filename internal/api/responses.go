package api

// responses.go provides helpers for sending HTTP responses from the node handlers.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/planetmint/planetmint-driver-go/internal/logger"
)

// RespondWithErrorResponse maps err, logs it and sends the error body.
func RespondWithErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse := MapErrorToResponse(err, r)

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Warn("request failed",
		slog.String("error", err.Error()),
		slog.Int("status_code", errorResponse.Status),
		slog.String("request_id", errorResponse.RequestID),
	)
	logger.ContextWithLogAttrs(r.Context(), slog.String("error", err.Error()))

	RespondWithJSONPayload(w, errorResponse.Status, errorResponse)
}

// RespondWithJSONPayload sends payload as JSON with the given status code.
func RespondWithJSONPayload(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			// headers are already written
			slog.Error("failed to encode JSON response",
				slog.String("error", err.Error()),
			)
		}
	}
}
