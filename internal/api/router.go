package api

import (
	"eco-route-service/internal/api/handlers"
	"eco-route-service/internal/platform/metrics"
	"eco-route-service/internal/ports"
	"eco-route-service/internal/services"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tune the planner API.
type Options struct {
	// AllowedOrigins enables CORS and websocket origins; "*" allows any.
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner *services.Planner, opts Options) http.Handler {
	metrics.Register()
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{Planner: planner}
	sessions := &handlers.SessionHandler{Planner: planner}
	presets := &handlers.PresetHandler{Catalog: planner.Presets()}
	geocode := &handlers.GeocodeHandler{Geocoding: planner.Geocoding()}
	status := &handlers.StatusHandler{
		Planner:  planner,
		Upgrader: websocket.Upgrader{CheckOrigin: originChecker(opts.AllowedOrigins)},
	}

	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /presets", presets.List)
	mux.HandleFunc("GET /geocode", geocode.Search)

	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("GET /sessions/{id}", sessions.Get)
	mux.HandleFunc("DELETE /sessions/{id}", sessions.Delete)
	mux.HandleFunc("POST /sessions/{id}/ops", sessions.Apply)
	mux.HandleFunc("POST /sessions/{id}/optimize", sessions.Optimize)
	mux.HandleFunc("GET /sessions/{id}/analytics", sessions.Analytics)
	mux.HandleFunc("GET /sessions/{id}/viewport", sessions.Viewport)
	mux.HandleFunc("GET /sessions/{id}/report", sessions.Report)
	mux.HandleFunc("GET /sessions/{id}/status", status.Stream)
	mux.HandleFunc("GET /reports/{id}", sessions.ArchivedReport)

	return requestIDMiddleware(corsMiddleware(opts.AllowedOrigins, loggingMiddleware(mux)))
}

// NewOptimizerRouter serves the optimizer contract backed by opt.
func NewOptimizerRouter(opt ports.RouteOptimizer) http.Handler {
	metrics.Register()
	mux := http.NewServeMux()

	h := &handlers.OptimizerHandler{Optimizer: opt}
	mux.HandleFunc("POST /optimize_route", h.OptimizeRoute)
	mux.HandleFunc("GET /health", h.Ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}

// originChecker accepts same-host requests, plus the configured origins.
func originChecker(origins []string) func(*http.Request) bool {
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, origin) {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
