package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
)

// RestaurantHandler serves the dataset listing, ranking and metadata endpoints
type RestaurantHandler struct {
	restaurants interfaces.RestaurantService
	logger      arbor.ILogger
}

func NewRestaurantHandler(restaurants interfaces.RestaurantService, logger arbor.ILogger) *RestaurantHandler {
	return &RestaurantHandler{
		restaurants: restaurants,
		logger:      logger,
	}
}

// ListHandler handles GET /api/restaurants
func (h *RestaurantHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &models.RestaurantListRequest{
		Limit:        QueryInt(r, "limit", 20),
		Offset:       QueryInt(r, "offset", 0),
		Exclude:      QueryList(r, "exclude"),
		SortBy:       q.Get("sortBy"),
		Category:     q.Get("category"),
		Neighborhood: q.Get("neighborhood"),
	}
	if req.SortBy == "" {
		req.SortBy = models.SortRandom
	}

	WriteJSON(w, http.StatusOK, h.restaurants.List(req))
}

// TopHandler handles GET /api/restaurants/top
func (h *RestaurantHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &models.TopRestaurantsRequest{
		Limit:        QueryInt(r, "limit", 50),
		MinFaces:     QueryInt(r, "minFaces", 10),
		Category:     q.Get("category"),
		Neighborhood: q.Get("neighborhood"),
	}

	WriteJSON(w, http.StatusOK, h.restaurants.Top(req))
}

// GetHandler handles GET /api/restaurants/{id}
func (h *RestaurantHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.restaurants.GetByID(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	WriteJSON(w, http.StatusOK, restaurant)
}

// CategoriesHandler handles GET /api/meta/categories
func (h *RestaurantHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, models.MetaResponse{Values: h.restaurants.Categories()})
}

// NeighborhoodsHandler handles GET /api/meta/neighborhoods
func (h *RestaurantHandler) NeighborhoodsHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, models.MetaResponse{Values: h.restaurants.Neighborhoods()})
}
