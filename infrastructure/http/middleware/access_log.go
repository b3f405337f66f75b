package middleware

import (
	"net/http"
	"strings"

	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

// statusRecorder captures the status code and body size written by the
// handler chain.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// AccessLogMiddleware emits one api_access audit event per request. Health
// probes and static assets are excluded to keep the trail readable.
func AccessLogMiddleware(rec audit.Recorder, clk clock.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAccessLog(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			start := clk.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			severity := "INFO"
			if recorder.status >= http.StatusInternalServerError {
				severity = "ERROR"
			} else if recorder.status >= http.StatusBadRequest {
				severity = "WARNING"
			}
			rec.Emit(r.Context(), domain.AuditEvent{
				Operation:  domain.AuditAPIAccess,
				Resource:   r.URL.Path,
				Severity:   severity,
				DurationMS: float64(clk.Now().Sub(start).Microseconds()) / 1000.0,
				Details: map[string]interface{}{
					"method":         r.Method,
					"status":         recorder.status,
					"query":          r.URL.RawQuery,
					"content_type":   recorder.Header().Get("Content-Type"),
					"content_length": recorder.bytes,
				},
			})
		})
	}
}

func skipAccessLog(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/static/")
}
