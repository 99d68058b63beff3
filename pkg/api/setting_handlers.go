package api

import (
	"net/http"

	"github.com/griddeck/griddeck/pkg/httputil"
)

// SettingsResponse carries the full panel configuration map.
type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// UpdateSettingsRequest is the body of PUT /api/v1/panel/settings. Keys
// not present in the request keep their stored values.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// getSettings handles GET /api/v1/panel/settings
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.records.AllSettings(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, SettingsResponse{Settings: settings})
}

// putSettings handles PUT /api/v1/panel/settings
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if len(req.Settings) == 0 {
		httputil.WriteBadRequest(w, "no settings provided")
		return
	}
	// Validate every key before the first write so a bad request does not
	// land half its changes.
	for key := range req.Settings {
		if key == "" {
			httputil.WriteBadRequest(w, "setting keys must not be empty")
			return
		}
	}

	for key, value := range req.Settings {
		if err := s.records.SetSetting(r.Context(), key, value); err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
	}

	if s.metrics != nil {
		s.metrics.SettingWritesTotal.Add(float64(len(req.Settings)))
	}

	settings, err := s.records.AllSettings(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, SettingsResponse{Settings: settings})
}
