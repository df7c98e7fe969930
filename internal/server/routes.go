package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Restaurants
	mux.HandleFunc("GET /api/restaurants", s.app.RestaurantHandler.ListHandler)
	mux.HandleFunc("GET /api/restaurants/top", s.app.RestaurantHandler.TopHandler)
	mux.HandleFunc("GET /api/restaurants/{id}", s.app.RestaurantHandler.GetHandler)

	// Enrichment
	mux.HandleFunc("GET /api/restaurants/{id}/photo", s.app.PhotoHandler.PhotoHandler)
	mux.HandleFunc("GET /api/restaurants/{id}/details", s.app.PhotoHandler.DetailsHandler)

	// Metadata
	mux.HandleFunc("GET /api/meta/categories", s.app.RestaurantHandler.CategoriesHandler)
	mux.HandleFunc("GET /api/meta/neighborhoods", s.app.RestaurantHandler.NeighborhoodsHandler)

	// Jobs
	mux.HandleFunc("GET /api/jobs", s.app.SchedulerHandler.JobsHandler)
	mux.HandleFunc("POST /api/jobs/{name}/trigger", s.app.SchedulerHandler.TriggerJobHandler)

	// System
	mux.HandleFunc("GET /api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("GET /api/version", s.app.APIHandler.VersionHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
