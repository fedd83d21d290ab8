package middleware

import (
	"net/http"
	"time"

	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/blaisecz/cognitive-sync/pkg/metrics"
)

// RequestLogger logs each request and records it in Prometheus under its
// route pattern. m may be nil.
func RequestLogger(log *logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTPRequest(route, r.Method, sw.status, elapsed)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", elapsed.Milliseconds(),
			}
			switch {
			case sw.status >= http.StatusInternalServerError:
				log.Error("request failed", fields...)
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				log.Debug("request served", fields...)
			default:
				log.Info("request served", fields...)
			}
		})
	}
}
