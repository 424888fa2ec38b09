package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/config"
)

// CORS echoes allowed origins and answers OPTIONS preflights with 204 without
// calling next. AllowedOrigins is a comma-separated list where "*" admits any
// origin; the origin itself is echoed so credentials keep working.
func CORS(cfg config.CORSConfig) Middleware {
	anyOrigin := false
	origins := make(map[string]struct{})
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[o] = struct{}{}
		}
	}
	allowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		_, ok := origins[origin]
		return ok || anyOrigin
	}

	preflight := http.Header{
		"Access-Control-Allow-Methods": {cfg.AllowedMethods},
		"Access-Control-Allow-Headers": {cfg.AllowedHeaders},
		"Access-Control-Max-Age":       {strconv.Itoa(cfg.MaxAge)},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); allowed(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", requestIDHeader)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			for k, v := range preflight {
				h.Set(k, v[0])
			}
			h.Add("Vary", "Access-Control-Request-Method")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
