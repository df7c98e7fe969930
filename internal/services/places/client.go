// Package places enriches restaurants with Google Places (New) data: it searches
// for the matching place, scores candidates, and caches photos and ratings.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Places API (New).
	DefaultBaseURL = "https://places.googleapis.com/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default outbound rate limit (requests per second).
	DefaultRateLimit = 10

	DefaultCity               = "San Francisco"
	DefaultMaxWidthPx         = 800
	DefaultMaxResultCount     = 3
	DefaultLocationBiasRadius = 200.0

	// maxErrorBody bounds how much of an error response is kept for logging
	maxErrorBody = 512
)

// Client is a Places API text search client.
type Client struct {
	baseURL        string
	apiKey         string
	city           string
	maxWidthPx     int
	maxResultCount int
	biasRadius     float64
	httpClient     *http.Client
	logger         arbor.ILogger
	limiter        *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the outbound rate limit.
func WithRateLimit(requestsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithCity sets the city appended to every search query.
func WithCity(city string) ClientOption {
	return func(c *Client) {
		c.city = city
	}
}

// WithMaxWidthPx sets the width requested for photo media.
func WithMaxWidthPx(px int) ClientOption {
	return func(c *Client) {
		c.maxWidthPx = px
	}
}

// WithMaxResultCount sets how many candidates a search returns.
func WithMaxResultCount(n int) ClientOption {
	return func(c *Client) {
		c.maxResultCount = n
	}
}

// WithLocationBiasRadius sets the radius in meters of the search location bias.
func WithLocationBiasRadius(meters float64) ClientOption {
	return func(c *Client) {
		c.biasRadius = meters
	}
}

// NewClient creates a new Places API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiKey:         apiKey,
		city:           DefaultCity,
		maxWidthPx:     DefaultMaxWidthPx,
		maxResultCount: DefaultMaxResultCount,
		biasRadius:     DefaultLocationBiasRadius,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// StatusError is returned when the Places API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("places API returned status %d: %s", e.StatusCode, e.Body)
}

// SearchQuery builds the free-text query for a restaurant
func (c *Client) SearchQuery(restaurant *models.Restaurant) string {
	return fmt.Sprintf("\"%s\" restaurant %s %s", restaurant.Name, restaurant.Neighborhood, c.city)
}

// TextSearch searches for places matching the restaurant's name near its location.
// Candidates are returned in upstream order. An empty slice means no results.
func (c *Client) TextSearch(ctx context.Context, restaurant *models.Restaurant) ([]models.CandidatePlace, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(searchTextRequest{
		TextQuery: c.SearchQuery(restaurant),
		LocationBias: &locationBias{
			Circle: circle{
				Center: latLng{
					Latitude:  restaurant.Location.Lat,
					Longitude: restaurant.Location.Lng,
				},
				Radius: c.biasRadius,
			},
		},
		MaxResultCount: c.maxResultCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	reqURL := c.baseURL + "/places:searchText"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	if c.logger != nil {
		c.logger.Debug().
			Str("url", reqURL).
			Str("restaurant_id", restaurant.ID).
			Str("query", c.SearchQuery(restaurant)).
			Msg("Calling Places text search")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call places API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	var apiResp searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	candidates := make([]models.CandidatePlace, 0, len(apiResp.Places))
	for _, p := range apiResp.Places {
		candidates = append(candidates, toCandidate(p))
	}

	return candidates, nil
}

// PhotoMediaURL returns the media URL for an upstream photo resource name.
// The URL embeds the API key and is handed to browsers as a redirect target.
func (c *Client) PhotoMediaURL(photoReference string) string {
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d&key=%s",
		c.baseURL, photoReference, c.maxWidthPx, url.QueryEscape(c.apiKey))
}

func toCandidate(p place) models.CandidatePlace {
	candidate := models.CandidatePlace{
		ExternalID:  p.ID,
		Rating:      p.Rating,
		RatingCount: p.UserRatingCount,
	}
	if p.DisplayName != nil {
		candidate.DisplayName = p.DisplayName.Text
	}
	if p.Location != nil {
		candidate.Location = &models.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	for _, photo := range p.Photos {
		if photo.Name != "" {
			candidate.PhotoReferences = append(candidate.PhotoReferences, photo.Name)
		}
	}
	return candidate
}

var _ interfaces.PlaceSearcher = (*Client)(nil)
