// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses
// and parameter parsing used by the panel API handlers.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, summaries)
//	httputil.WriteNoContent(w)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteNotFoundError(w, "application not found")
//	httputil.WriteUnprocessableEntity(w, err, details)
//
// Binary responses:
//
//	httputil.WriteImage(w, "image/webp", data)
//
// # Request Parsing
//
// JSON parsing:
//
//	var req SetPinsRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path parameters:
//
//	appID, ok := httputil.ParsePathStringOrError(w, r, "appID")
//
// # Related Packages
//
//   - pkg/middleware: Request ID, logging, recovery and rate limiting
//   - pkg/api: The panel's HTTP handlers
package httputil
