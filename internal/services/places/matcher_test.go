package places

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/tresty/internal/models"
)

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Zuni Cafe", "Zuni Cafe", 1},
		{"case insensitive", "ZUNI cafe", "zuni CAFE", 1},
		{"accent breaks token", "Zuni Cafe", "Zuni Café", 0.5},
		{"subset", "Tartine", "Tartine Bakery", 0.5},
		{"disjoint", "Nopa", "Flour + Water", 0},
		{"extra whitespace", "  State   Bird  Provisions ", "State Bird Provisions", 1},
		{"duplicate tokens collapse", "the the", "the", 1},
		{"both empty", "", "", 0},
		{"one empty", "", "Nopa", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NameSimilarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, NameSimilarity(tt.b, tt.a), 1e-9, "similarity must be symmetric")
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistance(37.7725, -122.4241, 37.7725, -122.4241))

	// 0.0001 degrees of latitude is about 11.1 m
	d := HaversineDistance(37.7725, -122.4241, 37.7726, -122.4241)
	assert.InDelta(t, 11.12, d, 0.05)

	// Ferry Building to Golden Gate Park's west end is roughly 10.5 km
	d = HaversineDistance(37.7955, -122.3937, 37.7694, -122.5107)
	assert.InDelta(t, 10600, d, 300)
}

func zuniTarget() *models.Restaurant {
	return &models.Restaurant{
		ID:       "zuni00000000",
		Name:     "Zuni Cafe",
		Location: models.LatLng{Lat: 37.7725, Lng: -122.4241},
	}
}

func TestSelectBestMatch_ZuniCafe(t *testing.T) {
	candidates := []models.CandidatePlace{
		{ExternalID: "places/zuni-cafe", DisplayName: "Zuni Café", Location: &models.LatLng{Lat: 37.7726, Lng: -122.4242}},
		{ExternalID: "places/zuni-market", DisplayName: "Zuni Market", Location: &models.LatLng{Lat: 37.80, Lng: -122.40}},
	}

	target := zuniTarget()
	best, ok := SelectBestMatch(target, candidates)
	require.True(t, ok)
	assert.Equal(t, "places/zuni-cafe", best.ExternalID)

	first := ScoreCandidate(target, &candidates[0])
	second := ScoreCandidate(target, &candidates[1])
	assert.InDelta(t, 9.86, first, 0.02)
	assert.InDelta(t, 5.0, second, 1e-9)
}

func TestSelectBestMatch_Deterministic(t *testing.T) {
	candidates := []models.CandidatePlace{
		{ExternalID: "a", DisplayName: "Zuni Market", Location: &models.LatLng{Lat: 37.80, Lng: -122.40}},
		{ExternalID: "b", DisplayName: "Zuni Café", Location: &models.LatLng{Lat: 37.7726, Lng: -122.4242}},
		{ExternalID: "c", DisplayName: "Something Else"},
	}

	target := zuniTarget()
	for i := 0; i < 20; i++ {
		best, ok := SelectBestMatch(target, candidates)
		require.True(t, ok)
		assert.Equal(t, "b", best.ExternalID)
	}
}

func TestSelectBestMatch_TiesKeepEarliest(t *testing.T) {
	candidates := []models.CandidatePlace{
		{ExternalID: "first", DisplayName: "Zuni Cafe"},
		{ExternalID: "second", DisplayName: "Zuni Cafe"},
	}

	best, ok := SelectBestMatch(zuniTarget(), candidates)
	require.True(t, ok)
	assert.Equal(t, "first", best.ExternalID)
}

func TestSelectBestMatch_MissingFieldsScoreZero(t *testing.T) {
	candidates := []models.CandidatePlace{
		{ExternalID: "bare"},
	}

	target := zuniTarget()
	assert.Equal(t, 0.0, ScoreCandidate(target, &candidates[0]))

	// A zero-score candidate is still selected when it is the only one
	best, ok := SelectBestMatch(target, candidates)
	require.True(t, ok)
	assert.Equal(t, "bare", best.ExternalID)
}

func TestSelectBestMatch_FarAwayNameOnly(t *testing.T) {
	far := &models.LatLng{Lat: 40.7128, Lng: -74.0060}
	candidates := []models.CandidatePlace{
		{ExternalID: "ny", DisplayName: "Zuni Cafe", Location: far},
	}
	score := ScoreCandidate(zuniTarget(), &candidates[0])
	assert.False(t, math.IsNaN(score))
	assert.Equal(t, 10.0, score, "distance term is floored at zero")
}

func TestSelectBestMatch_Empty(t *testing.T) {
	best, ok := SelectBestMatch(zuniTarget(), nil)
	assert.False(t, ok)
	assert.Nil(t, best)
}
