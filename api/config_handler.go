package api

import (
	"net/http"

	"github.com/seenimoa/sentidash/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     config.Config `json:"config"`
	ConfigFile string        `json:"config_file,omitempty"` // path to the active config file
}

// handleGetConfig returns the running configuration with feed credentials
// masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg.Redacted(),
			ConfigFile: s.cfg.File,
		},
	})
}
