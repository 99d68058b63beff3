package plugins

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an application id does not resolve to a
// loaded instance.
var ErrNotFound = errors.New("application not found")

// ErrAlreadyLoaded is returned when a load is attempted for an id that is
// already live in the registry.
var ErrAlreadyLoaded = errors.New("application already loaded")

// DiscoveryError means the set of installed applications could not be
// enumerated at all. It is fatal to startup.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to discover applications in %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// LoadError means one application failed to load. It never escapes
// Registry.Load; it exists so logs and tests can inspect the cause.
type LoadError struct {
	ID  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load application %s: %v", e.ID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DescriptorInvalidError means an application descriptor failed validation.
// It keeps the individual findings so API responses can report them per
// field.
type DescriptorInvalidError struct {
	Findings []ValidationError
}

func (e *DescriptorInvalidError) Error() string {
	parts := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		parts[i] = f.Field + ": " + f.Message
	}
	return "descriptor validation failed: " + strings.Join(parts, "; ")
}
