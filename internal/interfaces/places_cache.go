package interfaces

import (
	"context"

	"github.com/ternarybob/tresty/internal/models"
)

// PlacesCacheStorage persists enrichment results with a fixed TTL.
// Expired records are treated as absent but are not deleted.
type PlacesCacheStorage interface {
	// GetPhoto returns the cached URL for a photo slot. found=true with an empty
	// url is a confirmed negative.
	GetPhoto(ctx context.Context, entityID string, photoIndex int) (url string, found bool, err error)

	// SetPhoto upserts one photo slot. A nil photoURL records a confirmed negative.
	SetPhoto(ctx context.Context, entityID string, photoIndex int, photoURL *string, externalID string) error

	// SetPhotos upserts slots 0..len(photoURLs)-1 in a single transaction
	SetPhotos(ctx context.Context, entityID string, photoURLs []string, externalID string) error

	// GetDetails returns nil when no servable record exists
	GetDetails(ctx context.Context, entityID string) (*models.PlaceDetails, error)

	SetDetails(ctx context.Context, entityID string, rating *float64, ratingCount *int, externalID string, photoCount int) error

	// CountPhotos counts physical photo records for an entity, expired or not
	CountPhotos(ctx context.Context, entityID string) (int, error)

	Stats(ctx context.Context) (models.PlacesCacheStats, error)
}
