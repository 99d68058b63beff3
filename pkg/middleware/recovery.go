package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/httputil"
)

// RecoveryMiddleware recovers from handler panics and returns a 500
// error instead of tearing down the connection
func RecoveryMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Errorf("Panic handling %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
					httputil.WriteInternalError(w, fmt.Errorf("internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
