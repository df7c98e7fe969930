package models

// Restaurant is a single entry of the curated dataset.
// Entries are immutable once indexed; a refresh builds a new index.
type Restaurant struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Neighborhood    string  `json:"neighborhood"`
	Location        LatLng  `json:"location"`
	AttractiveScore float64 `json:"attractiveScore"`
	AgeScore        float64 `json:"ageScore"`
	GenderScore     float64 `json:"genderScore"`
	Faces           int     `json:"faces"`
	PhotoURL        *string `json:"photoUrl"`
}

// Sort orders accepted by the restaurant list
const (
	SortRandom     = "random"
	SortAttractive = "attractive"
	SortName       = "name"
)

// RestaurantListRequest filters and paginates the full dataset
type RestaurantListRequest struct {
	Limit        int
	Offset       int
	Exclude      []string
	SortBy       string
	Category     string
	Neighborhood string
}

// TopRestaurantsRequest filters the attractiveness ranking
type TopRestaurantsRequest struct {
	Limit        int
	MinFaces     int
	Category     string
	Neighborhood string
}

// RestaurantListResponse is a page of restaurants
type RestaurantListResponse struct {
	Restaurants []*Restaurant `json:"restaurants"`
	Total       int           `json:"total"`
	HasMore     bool          `json:"hasMore"`
}

// MetaResponse lists the distinct values of a restaurant attribute
type MetaResponse struct {
	Values []string `json:"values"`
}
