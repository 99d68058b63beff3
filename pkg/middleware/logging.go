package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/observability"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs each request with its status and duration
func LoggingMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			fields := logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rw.statusCode,
				"duration":   time.Since(start).String(),
				"remote":     getClientIP(r),
				"request_id": GetRequestID(r.Context()),
			}
			// Join log lines with traces when tracing is on.
			for k, v := range observability.TraceFields(r.Context()) {
				fields[k] = v
			}

			log.WithFields(fields).Info("Handled request")
		})
	}
}
