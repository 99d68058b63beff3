package assets

import (
	"errors"
	"fmt"
)

// ErrUnknownRendition is returned for a rendition name outside the fixed
// table. Unlike a missing source icon this is the caller's mistake, so it
// surfaces as an error rather than the fallback.
var ErrUnknownRendition = errors.New("unknown rendition")

// RenditionError means one rendition could not be generated from its
// source icon. The cache recovers by serving the fallback icon; the type
// exists so logs and metrics can see the cause.
type RenditionError struct {
	AppID     string
	Rendition Rendition
	Err       error
}

func (e *RenditionError) Error() string {
	return fmt.Sprintf("failed to render %s for %s: %v", e.Rendition, e.AppID, e.Err)
}

func (e *RenditionError) Unwrap() error { return e.Err }
