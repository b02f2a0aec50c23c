package handlers

import (
	"net/http"

	"github.com/planetmint/planetmint-driver-go/internal/api"
	"github.com/planetmint/planetmint-driver-go/internal/version"
)

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Service string `json:"service"`
	version.Info
}

// HandleVersion reports the build information of the running node.
func HandleVersion(info version.Info) http.HandlerFunc {
	response := VersionResponse{Service: "planetmint-sandbox-node", Info: info}

	return func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithJSONPayload(w, http.StatusOK, response)
	}
}
