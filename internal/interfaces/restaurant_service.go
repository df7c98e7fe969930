package interfaces

import (
	"context"

	"github.com/ternarybob/tresty/internal/models"
)

// RestaurantService serves the in-memory restaurant dataset
type RestaurantService interface {
	// Refresh downloads the dataset and swaps the index. The previous index is
	// kept when the download or parse fails.
	Refresh(ctx context.Context) error

	List(req *models.RestaurantListRequest) *models.RestaurantListResponse
	Top(req *models.TopRestaurantsRequest) *models.RestaurantListResponse
	GetByID(id string) (*models.Restaurant, bool)
	Categories() []string
	Neighborhoods() []string
	Count() int
}
