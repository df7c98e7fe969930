package models

import "time"

// PlacesCacheTTL is the fixed lifetime of photo and details cache records.
const PlacesCacheTTL = 7 * 24 * time.Hour

// LatLng represents a geographic coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CandidatePlace is a single place returned by a text search, not yet confirmed
// to be the restaurant being enriched.
type CandidatePlace struct {
	ExternalID      string
	DisplayName     string
	Location        *LatLng  // nil when the upstream omitted coordinates
	Rating          *float64 // nil when unrated
	RatingCount     *int
	PhotoReferences []string // upstream photo resource names, in upstream order
}

// PhotoCount returns the number of photo slots the candidate exposes
func (c *CandidatePlace) PhotoCount() int {
	if c == nil {
		return 0
	}
	return len(c.PhotoReferences)
}

// PlaceDetails is the enrichment result served by the details endpoint.
// Rating and UserRatingCount serialize as null when unknown.
type PlaceDetails struct {
	Rating          *float64 `json:"rating"`
	UserRatingCount *int     `json:"userRatingCount"`
	PhotoCount      int      `json:"photoCount"`
}

// PhotoCacheRecord caches the media URL of one photo slot of a restaurant.
// A nil PhotoURL is a confirmed negative: the slot was looked up and has no photo.
type PhotoCacheRecord struct {
	Key        string `badgerhold:"key"`
	EntityID   string `badgerhold:"index"`
	PhotoIndex int
	PhotoURL   *string
	ExternalID string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// DetailsCacheRecord caches rating data for a restaurant.
// Rows written before PhotoCount existed decode with PhotoCount = 0.
type DetailsCacheRecord struct {
	EntityID    string `badgerhold:"key"`
	Rating      *float64
	RatingCount *int
	ExternalID  string
	PhotoCount  int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsValid reports whether the record can still be served at the given time
func (r *PhotoCacheRecord) IsValid(now time.Time) bool {
	return r != nil && now.Before(r.ExpiresAt)
}

// IsValid reports whether the record can still be served at the given time
func (r *DetailsCacheRecord) IsValid(now time.Time) bool {
	return r != nil && now.Before(r.ExpiresAt)
}

// ToDetails converts the record to the served details shape
func (r *DetailsCacheRecord) ToDetails() *PlaceDetails {
	return &PlaceDetails{
		Rating:          r.Rating,
		UserRatingCount: r.RatingCount,
		PhotoCount:      r.PhotoCount,
	}
}

// PlacesCacheStats summarises the physical and servable contents of the places cache
type PlacesCacheStats struct {
	PhotoRecords        int `json:"photoRecords"`
	ValidPhotoRecords   int `json:"validPhotoRecords"`
	DetailsRecords      int `json:"detailsRecords"`
	ValidDetailsRecords int `json:"validDetailsRecords"`
}
