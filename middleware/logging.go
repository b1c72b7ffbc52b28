package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const TraceHeader = "X-Trace-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger attaches a trace id and a request scoped logger to every
// request and logs its outcome.
func RequestLogger(base *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)

			logger := base.With("trace_id", traceID, "method", r.Method, "path", r.URL.Path)
			ctx := contextkeys.WithTraceID(r.Context(), traceID)
			ctx = contextkeys.WithLogger(ctx, logger)

			start := time.Now()
			logger.Debug("Request started")

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "Request finished",
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
