// Package store persists the panel's durable records: per-user pin
// lists and panel settings.
//
// SQLStore is the canonical implementation and runs on sqlite3 for
// single-node installs or postgres for shared deployments. CachedStore
// optionally layers read-through redis caching on top; it degrades to
// the inner store whenever redis misbehaves, so it is safe to keep in
// the stack even on flaky cache infrastructure.
package store
