package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// NewRestaurantID derives the stable dataset id: the first 12 hex characters of
// sha256("name:lat:lng") with coordinates in shortest round-trip form.
func NewRestaurantID(name string, lat, lng float64) string {
	key := name + ":" + strconv.FormatFloat(lat, 'f', -1, 64) + ":" + strconv.FormatFloat(lng, 'f', -1, 64)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}

// NewRequestID generates an id for correlating a request across log lines
func NewRequestID() string {
	return uuid.New().String()
}
