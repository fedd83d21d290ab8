package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request and passes its context on to
// handlers and services. Spans are named by route pattern once chi has
// matched it.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("cognitive-sync/http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		// Langfuse renders these as the observation's input and output.
		input := map[string]any{"method": r.Method, "path": r.URL.Path}
		if r.URL.RawQuery != "" {
			input["query"] = r.URL.RawQuery
		}
		if in, err := json.Marshal(input); err == nil {
			span.SetAttributes(attribute.String("langfuse.observation.input", string(in)))
		}

		sw := newStatusWriter(w)
		start := time.Now()
		next.ServeHTTP(sw, r.WithContext(ctx))

		if route := routePattern(r); route != "" {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.status_code", sw.status))
		if sw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(sw.status))
		}
		output := map[string]any{"status_code": sw.status, "duration_ms": time.Since(start).Milliseconds()}
		if out, err := json.Marshal(output); err == nil {
			span.SetAttributes(attribute.String("langfuse.observation.output", string(out)))
		}
	})
}

// routePattern is the matched chi pattern, e.g. /v1/users/{userId}/profile.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}
