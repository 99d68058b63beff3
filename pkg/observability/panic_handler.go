package observability

import "fmt"

// MustRecover converts a recovered panic value to an error
//
// Usage when you want to treat panics as errors:
//
//	func decode() (img image.Image, err error) {
//	    defer func() {
//	        if r := recover(); r != nil {
//	            err = observability.MustRecover(r)
//	        }
//	    }()
//	    // ... code that might panic
//	}
//
// Image decoders fed untrusted files are the main user; a corrupt icon must
// surface as an error on one request, not take down the daemon.
func MustRecover(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
