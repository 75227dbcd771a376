package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/myenglish-adapter/internal/config"
)

// CORS echoes allowed origins (with Vary: Origin) and answers preflights,
// meaning OPTIONS requests with Access-Control-Request-Method, with 204.
// Plain OPTIONS requests reach the router.
func CORS(cfg config.CORSConfig) Middleware {
	anyOrigin, origins := parseOrigins(cfg.AllowedOrigins)
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := origins[origin]; ok || anyOrigin {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
					if cfg.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
				}
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			h.Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// parseOrigins splits a comma-separated origin list. "*" allows any origin.
func parseOrigins(raw string) (bool, map[string]struct{}) {
	set := make(map[string]struct{})
	anyOrigin := false
	for _, o := range strings.Split(raw, ",") {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			anyOrigin = true
		default:
			set[o] = struct{}{}
		}
	}
	return anyOrigin, set
}
