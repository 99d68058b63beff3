package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/griddeck/griddeck/pkg/httputil"
	"github.com/griddeck/griddeck/pkg/plugins"
)

// ListApplicationsResponse is the envelope for GET /api/v1/applications.
type ListApplicationsResponse struct {
	Applications []plugins.Summary `json:"applications"`
	Count        int               `json:"count"`
}

// listApplications handles GET /api/v1/applications
func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	apps := s.registry.ListLoaded()
	httputil.WriteSuccess(w, ListApplicationsResponse{
		Applications: apps,
		Count:        len(apps),
	})
}

// loadApplication handles POST /api/v1/applications/{appID}/load
func (s *Server) loadApplication(w http.ResponseWriter, r *http.Request) {
	appID, ok := httputil.ParsePathStringOrError(w, r, "appID")
	if !ok {
		return
	}

	inst, err := s.registry.Load(r.Context(), appID)
	if err != nil {
		s.writeLoadError(w, r, appID, err)
		return
	}

	s.recordAppLoad(r.Context(), "success")
	httputil.WriteSuccess(w, inst.Summary())
}

// writeLoadError maps a load failure onto a status code: conflicts for
// already-loaded ids, 404 for ids with no install directory, 422 with per
// field findings for broken descriptors, 422 for everything else an admin
// can fix by fixing the application.
func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, appID string, err error) {
	var invalid *plugins.DescriptorInvalidError

	switch {
	case errors.Is(err, plugins.ErrAlreadyLoaded):
		s.recordAppLoad(r.Context(), "conflict")
		httputil.WriteConflict(w, fmt.Sprintf("application %s is already loaded", appID))

	case errors.Is(err, fs.ErrNotExist):
		s.recordAppLoad(r.Context(), "not_installed")
		httputil.WriteNotFoundError(w, fmt.Sprintf("application %s is not installed", appID))

	case errors.As(err, &invalid):
		s.recordAppLoad(r.Context(), "invalid")
		details := make(map[string]string, len(invalid.Findings))
		for _, finding := range invalid.Findings {
			details[finding.Field] = finding.Message
		}
		httputil.WriteUnprocessableEntity(w, err, details)

	default:
		s.recordAppLoad(r.Context(), "error")
		httputil.WriteUnprocessableEntity(w, err, nil)
	}
}

// uninstallApplication handles DELETE /api/v1/applications/{appID}
func (s *Server) uninstallApplication(w http.ResponseWriter, r *http.Request) {
	appID, ok := httputil.ParsePathStringOrError(w, r, "appID")
	if !ok {
		return
	}

	if err := s.registry.Uninstall(r.Context(), appID); err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			s.recordAppUninstall(r.Context(), "not_found")
			httputil.WriteNotFoundError(w, fmt.Sprintf("application %s is not loaded", appID))
			return
		}
		s.recordAppUninstall(r.Context(), "error")
		httputil.WriteInternalError(w, err)
		return
	}

	// Drop memory-cached renditions. The on-disk cache stays so a
	// reinstall picks it straight back up; the sweeper removes it if the
	// install directory is really gone.
	if s.icons != nil {
		s.icons.InvalidateApp(appID)
	}

	s.recordAppUninstall(r.Context(), "success")
	httputil.WriteNoContent(w)
}
