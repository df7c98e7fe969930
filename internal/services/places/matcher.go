package places

import (
	"math"
	"strings"

	"github.com/ternarybob/tresty/internal/models"
)

const (
	earthRadiusMeters = 6371000.0

	nameWeight = 10.0
	// Proximity contributes up to proximityMax points, losing one per proximityStep meters
	proximityMax  = 5.0
	proximityStep = 100.0
)

// NameSimilarity is the token-set overlap of two names: |A∩B| / max(|A|, |B|)
// over lower-cased whitespace-separated tokens. Two empty names score 0.
func NameSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	denominator := max(len(setA), len(setB))
	if denominator == 0 {
		return 0
	}

	matches := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(denominator)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// HaversineDistance returns the great-circle distance in meters between two points
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ScoreCandidate rates how likely candidate is the restaurant.
// A missing display name or location contributes nothing to its term.
func ScoreCandidate(restaurant *models.Restaurant, candidate *models.CandidatePlace) float64 {
	score := 0.0

	if candidate.DisplayName != "" {
		score += NameSimilarity(restaurant.Name, candidate.DisplayName) * nameWeight
	}

	if candidate.Location != nil {
		distance := HaversineDistance(
			restaurant.Location.Lat, restaurant.Location.Lng,
			candidate.Location.Lat, candidate.Location.Lng,
		)
		score += math.Max(0, proximityMax-distance/proximityStep)
	}

	return score
}

// SelectBestMatch returns the highest scoring candidate. Ties keep the earliest
// candidate. ok is false only when candidates is empty.
func SelectBestMatch(restaurant *models.Restaurant, candidates []models.CandidatePlace) (*models.CandidatePlace, bool) {
	bestIndex := -1
	bestScore := math.Inf(-1)

	for i := range candidates {
		if score := ScoreCandidate(restaurant, &candidates[i]); score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		return nil, false
	}
	return &candidates[bestIndex], true
}
