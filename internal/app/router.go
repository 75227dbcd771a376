package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/myenglish-adapter/internal/config"
	"github.com/heartmarshall/myenglish-adapter/internal/transport/middleware"
	"github.com/heartmarshall/myenglish-adapter/internal/transport/rest"
)

// Router is the HTTP handler tree plus the resources it owns.
type Router struct {
	http.Handler
	limiter *middleware.RateLimiter
}

// Stop releases background resources held by the router.
func (r *Router) Stop() {
	if r.limiter != nil {
		r.limiter.Stop()
	}
}

// NewRouter registers all routes and wraps them in the middleware chain.
func NewRouter(cfg *config.Config, svcs *Services, logger *slog.Logger) *Router {
	content := rest.NewContentHandler(svcs.Exercise, svcs.Simplify, svcs.Knowledge, cfg.Server.MaxBodyBytes, logger)
	health := rest.NewHealthHandler(BuildVersion(), map[string]rest.Pinger{"vector_store": svcs.Store})

	api := http.NewServeMux()
	api.HandleFunc("POST /api/generate-exercises", content.GenerateExercises)
	api.HandleFunc("POST /api/simplify-content", content.SimplifyContent)
	api.HandleFunc("GET /api/search", content.Search)

	r := &Router{}
	var apiHandler http.Handler = api
	if cfg.RateLimit.RequestsPerMinute > 0 {
		r.limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		apiHandler = r.limiter.Limit(cfg.RateLimit.RequestsPerMinute)(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /{$}", rest.UI)

	r.Handler = middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
	return r
}
