// Package middleware provides HTTP middleware for request identification,
// logging, panic recovery, and rate limiting.
//
// # Overview
//
// This package implements the request processing layers wrapped around the
// panel API: request ids, structured access logging, panic recovery, and
// token bucket rate limiting for the icon endpoints.
//
// # Middleware Components
//
// RequestIDMiddleware: unique id per request
//
//	router.Use(middleware.RequestIDMiddleware)
//	// Honors a client-supplied X-Request-ID, generates a UUID otherwise
//
// LoggingMiddleware: structured access log
//
//	router.Use(middleware.LoggingMiddleware(log))
//
// RecoveryMiddleware: panic to 500
//
//	router.Use(middleware.RecoveryMiddleware(log))
//
// RateLimitMiddleware: in-memory rate limiting
//
//	rl := middleware.NewRateLimitMiddleware(middleware.IconRateLimitConfig(20, 40))
//	iconRoute.Handler(rl.Handler(iconHandler))
//
// # Rate Limiting
//
// Limits are token buckets keyed by client address. The icon profile
// uses a one second window so a panel redraw can burst a full screen of
// icons without tripping the limit.
//
// # Related Packages
//
//   - pkg/httputil: Response helpers used by the middleware
//   - pkg/api: Wires the middleware chain
package middleware
