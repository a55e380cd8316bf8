package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxLoggedBody caps request and response bodies captured for DEBUG logging.
// RFP ingest callbacks can carry hundreds of questions; logging them whole
// would drown the log stream.
const maxLoggedBody = 4096

// responseWriter wraps http.ResponseWriter to capture status code and response body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs HTTP requests with level-based detail. Health checks
// are not logged; load balancers fire them every few seconds and they carry no information.
//
// Log levels:
// - INFO: request line with Remote-IP, User-Agent, HTTP-Method, and Path
// - DEBUG: additionally truncated request/response bodies and query parameters
// - WARN: failed requests (status 4xx)
// - ERROR: errors (status 5xx)
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug)

		attrs := []any{
			"remote_ip", getIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
		}

		var requestBody []byte
		if debug && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))

			if len(r.URL.Query()) > 0 {
				attrs = append(attrs, "query_params", r.URL.Query())
			}
			if len(requestBody) > 0 {
				attrs = append(attrs, "request_body", truncate(requestBody))
			}
			slog.Debug("Incoming request", attrs...)
		} else {
			slog.Info("Incoming request", attrs...)
		}

		var responseBody *bytes.Buffer
		if debug {
			responseBody = &bytes.Buffer{}
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           responseBody,
		}

		next.ServeHTTP(wrapped, r)

		attrs = append(attrs,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if debug && responseBody != nil && responseBody.Len() > 0 {
			attrs = append(attrs, "response_body", truncate(responseBody.Bytes()))
		}

		switch {
		case wrapped.statusCode >= 500:
			slog.Log(r.Context(), slog.LevelError, "Request failed with error", attrs...)
		case wrapped.statusCode >= 400:
			slog.Log(r.Context(), slog.LevelWarn, "Request failed", attrs...)
		default:
			slog.Log(r.Context(), slog.LevelInfo, "Request completed", attrs...)
		}
	})
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "... (truncated)"
	}
	return string(b)
}
