package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"rfp-hub/internal/config"
)

// CORSMiddleware applies the configured CORS policy. The header lists are
// joined once at construction since the config never changes after startup.
type CORSMiddleware struct {
	config         *config.CORSConfig
	allowedMethods string
	allowedHeaders string
	exposedHeaders string
	maxAge         string
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(cfg *config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		config:         cfg,
		allowedMethods: strings.Join(cfg.AllowedMethods, ", "),
		allowedHeaders: strings.Join(cfg.AllowedHeaders, ", "),
		exposedHeaders: strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:         strconv.Itoa(cfg.MaxAge),
	}
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	for _, allowed := range m.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return allowed
		}
	}
	return ""
}

// Handler sets CORS headers on allowed origins and short-circuits
// preflight requests with 204.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := m.allowOrigin(r.Header.Get("Origin")); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			if m.config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Allow-Methods", m.allowedMethods)
			h.Set("Access-Control-Allow-Headers", m.allowedHeaders)
			if m.exposedHeaders != "" {
				h.Set("Access-Control-Expose-Headers", m.exposedHeaders)
			}
			if m.config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", m.maxAge)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
