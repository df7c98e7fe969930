package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
)

// isoTimestamp matches the millisecond UTC form used by JavaScript clients
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

type APIHandler struct {
	restaurants interfaces.RestaurantService
	cache       interfaces.PlacesCacheStorage
	logger      arbor.ILogger
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status          string                   `json:"status"`
	RestaurantCount int                      `json:"restaurantCount"`
	Timestamp       string                   `json:"timestamp"`
	Cache           *models.PlacesCacheStats `json:"cache,omitempty"`
}

func NewAPIHandler(restaurants interfaces.RestaurantService, cache interfaces.PlacesCacheStorage, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		restaurants: restaurants,
		cache:       cache,
		logger:      logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.Version,
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status. Cache stats are best effort.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:          "ok",
		RestaurantCount: h.restaurants.Count(),
		Timestamp:       time.Now().UTC().Format(isoTimestamp),
	}

	if h.cache != nil {
		stats, err := h.cache.Stats(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to read cache stats for health check")
		} else {
			resp.Cache = &stats
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
