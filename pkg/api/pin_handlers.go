package api

import (
	"errors"
	"net/http"

	"github.com/griddeck/griddeck/pkg/httputil"
	"github.com/griddeck/griddeck/pkg/pins"
	"github.com/griddeck/griddeck/pkg/plugins"
)

// SetPinsRequest is the body of PUT /api/v1/users/{username}/pins.
type SetPinsRequest struct {
	AppIDs []string `json:"appIds"`
}

// PinsResponse carries a user's pinned applications, resolved against the
// registry so only loaded applications appear.
type PinsResponse struct {
	Username     string            `json:"username"`
	Applications []plugins.Summary `json:"applications"`
}

// getPins handles GET /api/v1/users/{username}/pins
func (s *Server) getPins(w http.ResponseWriter, r *http.Request) {
	username, ok := httputil.ParsePathStringOrError(w, r, "username")
	if !ok {
		return
	}

	apps, err := s.pins.List(r.Context(), username)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, PinsResponse{
		Username:     username,
		Applications: apps,
	})
}

// putPins handles PUT /api/v1/users/{username}/pins
//
// The new list replaces the old one wholesale. Ids need not be loaded,
// so pins survive a temporary uninstall, but they must be valid ids.
func (s *Server) putPins(w http.ResponseWriter, r *http.Request) {
	username, ok := httputil.ParsePathStringOrError(w, r, "username")
	if !ok {
		return
	}

	var req SetPinsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.pins.Set(r.Context(), username, req.AppIDs); err != nil {
		if errors.Is(err, pins.ErrInvalidPin) {
			httputil.WriteUnprocessableEntity(w, err, nil)
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.PinWritesTotal.Inc()
	}

	// Answer with the resolved list the panel will render.
	apps, err := s.pins.List(r.Context(), username)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, PinsResponse{
		Username:     username,
		Applications: apps,
	})
}
