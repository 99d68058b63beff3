package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore persists the panel's durable records: per-user pin lists
// and panel settings. Implementations must be safe for concurrent use.
type RecordStore interface {
	// GetPins returns the ordered application id list pinned by a user.
	// A user with no pins gets an empty list, not ErrNotFound.
	GetPins(ctx context.Context, username string) ([]string, error)

	// SetPins replaces a user's pin list atomically.
	SetPins(ctx context.Context, username string, appIDs []string) error

	// GetSetting returns one panel setting; ErrNotFound when absent.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting creates or replaces one panel setting.
	SetSetting(ctx context.Context, key, value string) error

	// AllSettings returns every panel setting.
	AllSettings(ctx context.Context) (map[string]string, error)

	// Ping verifies connectivity for health checks.
	Ping(ctx context.Context) error

	Close() error
}
