package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/griddeck/griddeck/pkg/assets"
	"github.com/griddeck/griddeck/pkg/httputil"
	"github.com/griddeck/griddeck/pkg/plugins"
)

// getIcon handles GET /api/v1/applications/{appID}/icons/{rendition}
//
// The only 404s are an unknown application or an unknown rendition name.
// A broken source icon is not an error here: the cache already answered
// with the fallback image.
func (s *Server) getIcon(w http.ResponseWriter, r *http.Request) {
	appID, ok := httputil.ParsePathStringOrError(w, r, "appID")
	if !ok {
		return
	}
	renditionName, ok := httputil.ParsePathStringOrError(w, r, "rendition")
	if !ok {
		return
	}

	rendition, err := assets.ParseRendition(renditionName)
	if err != nil {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}

	start := time.Now()
	res, err := s.icons.Fetch(r.Context(), appID, rendition)
	if err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			httputil.WriteNotFoundError(w, fmt.Sprintf("application %s is not loaded", appID))
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	s.recordIconFetch(r.Context(), string(rendition), res.Outcome, time.Since(start))
	httputil.WriteImage(w, res.ContentType, res.Bytes)
}
