package places

// searchTextRequest is the body of a Places API (New) places:searchText call
type searchTextRequest struct {
	TextQuery      string        `json:"textQuery"`
	LocationBias   *locationBias `json:"locationBias,omitempty"`
	MaxResultCount int           `json:"maxResultCount"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// searchTextResponse carries only the fields named in the field mask
type searchTextResponse struct {
	Places []place `json:"places"`
}

type place struct {
	ID              string       `json:"id"`
	DisplayName     *localized   `json:"displayName,omitempty"`
	Location        *latLng      `json:"location,omitempty"`
	Rating          *float64     `json:"rating,omitempty"`
	UserRatingCount *int         `json:"userRatingCount,omitempty"`
	Photos          []placePhoto `json:"photos,omitempty"`
}

type localized struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// placePhoto.Name is the resource name, e.g. places/ChIJ.../photos/AUc7...
type placePhoto struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx,omitempty"`
	HeightPx int    `json:"heightPx,omitempty"`
}

// fieldMask limits the response to what matching and enrichment read
const fieldMask = "places.id,places.displayName,places.photos,places.rating,places.userRatingCount,places.location"
