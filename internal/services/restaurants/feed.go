package restaurants

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/models"
)

// featureCollection is the GeoJSON shape of the restaurant feed
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Properties featureProperties `json:"properties"`
	Geometry   featureGeometry   `json:"geometry"`
}

type featureProperties struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Hood            string  `json:"hood"`
	AgeScore        float64 `json:"age_score"`
	AttractiveScore float64 `json:"attractive_score"`
	GenderScore     float64 `json:"gender_score"`
	Faces           float64 `json:"faces"`
}

type featureGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

// decodeFeed reads a GeoJSON feed, gunzipping it when the payload starts with
// the gzip magic bytes. Transports that already decoded the body pass through.
func decodeFeed(r io.Reader) (*featureCollection, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var fc featureCollection
	if err := json.NewDecoder(src).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return &fc, nil
}

// toRestaurant converts a feature, reporting false when it has no usable point
func toRestaurant(f feature) (*models.Restaurant, bool) {
	if len(f.Geometry.Coordinates) < 2 || f.Properties.Name == "" {
		return nil, false
	}
	lng, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]

	hood := f.Properties.Hood
	if hood == "" {
		hood = InferNeighborhood(lat, lng)
	}

	return &models.Restaurant{
		ID:              common.NewRestaurantID(f.Properties.Name, lat, lng),
		Name:            f.Properties.Name,
		Category:        f.Properties.Category,
		Neighborhood:    hood,
		Location:        models.LatLng{Lat: lat, Lng: lng},
		AttractiveScore: f.Properties.AttractiveScore,
		AgeScore:        f.Properties.AgeScore,
		GenderScore:     f.Properties.GenderScore,
		Faces:           int(f.Properties.Faces),
	}, true
}
