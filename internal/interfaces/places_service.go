package interfaces

import (
	"context"

	"github.com/ternarybob/tresty/internal/models"
)

// PlacesService enriches restaurants with third-party place data.
// Implementations never return errors: every failure degrades to an absent
// photo or zero-value details.
type PlacesService interface {
	// GetPhotoURL returns the media URL of the photo at photoIndex, or false when
	// no photo is available for that slot.
	GetPhotoURL(ctx context.Context, restaurant *models.Restaurant, photoIndex int) (string, bool)

	// GetDetails returns rating data for the restaurant. Never nil.
	GetDetails(ctx context.Context, restaurant *models.Restaurant) *models.PlaceDetails
}

// PlaceSearcher runs a text search against the upstream places provider
type PlaceSearcher interface {
	TextSearch(ctx context.Context, restaurant *models.Restaurant) ([]models.CandidatePlace, error)
	PhotoMediaURL(photoReference string) string
}
