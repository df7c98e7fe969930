package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/interfaces"
)

// PhotoHandler serves enrichment data: photo redirects and place details.
// Restaurant existence is checked here; the places service never reports errors.
type PhotoHandler struct {
	restaurants interfaces.RestaurantService
	places      interfaces.PlacesService
	logger      arbor.ILogger
}

func NewPhotoHandler(restaurants interfaces.RestaurantService, places interfaces.PlacesService, logger arbor.ILogger) *PhotoHandler {
	return &PhotoHandler{
		restaurants: restaurants,
		places:      places,
		logger:      logger,
	}
}

// PhotoHandler handles GET /api/restaurants/{id}/photo?index=N with a redirect to the media URL
func (h *PhotoHandler) PhotoHandler(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.restaurants.GetByID(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	photoURL, ok := h.places.GetPhotoURL(r.Context(), restaurant, QueryInt(r, "index", 0))
	if !ok {
		WriteError(w, http.StatusNotFound, "No photo available")
		return
	}

	http.Redirect(w, r, photoURL, http.StatusFound)
}

// DetailsHandler handles GET /api/restaurants/{id}/details
func (h *PhotoHandler) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.restaurants.GetByID(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	WriteJSON(w, http.StatusOK, h.places.GetDetails(r.Context(), restaurant))
}
