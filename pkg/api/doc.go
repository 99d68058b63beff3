// Package api exposes the panel daemon's HTTP surface.
//
// # Overview
//
// The server serves five resource groups under /api/v1:
//
//   - applications: list loaded applications, load one by id, uninstall
//   - icons: fetch a fixed-size rendition of an application's icon
//   - pins: read and replace a user's ordered quick-access list
//   - settings: read and update panel configuration records
//
// Health and metrics endpoints live on a separate listener wired in
// cmd/griddeck, not on this router.
//
// # Error Mapping
//
// Domain outcomes map onto statuses instead of generic 500s:
//
//   - plugins.ErrAlreadyLoaded: 409
//   - missing install directory, unknown application, unknown rendition: 404
//   - plugins.DescriptorInvalidError: 422 with per-field details
//   - pins.ErrInvalidPin: 422
//
// A broken source icon is never an error on the icon route; the cache
// answers with the fallback image and the response stays 200.
//
// # Middleware
//
// Requests flow through request-ID minting, optional otelhttp tracing,
// access logging, panic recovery, and (inside the router, so the path
// label is the route template) Prometheus instrumentation. The icon route
// carries an additional per-client token bucket rate limit.
//
// # Related Packages
//
//   - pkg/plugins: the application registry behind the handlers
//   - pkg/assets: the icon rendition cache
//   - pkg/pins: per-user pin lists
//   - pkg/store: pins and settings persistence
package api
