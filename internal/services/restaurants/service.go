// Package restaurants holds the in-memory restaurant dataset built from the
// GeoJSON feed, and answers list, ranking and lookup queries against it.
package restaurants

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultTopLimit  = 50
	MaxTopLimit      = 200
	DefaultMinFaces  = 10

	// DefaultFeedTimeout bounds a single feed download
	DefaultFeedTimeout = 60 * time.Second
)

// index is an immutable snapshot of the dataset
type index struct {
	byID             map[string]*models.Restaurant
	all              []*models.Restaurant // feed order, first occurrence of each id
	byAttractiveness []*models.Restaurant
	categories       []string
	neighborhoods    []string
	loadedAt         time.Time
}

var emptyIndex = &index{
	byID:             map[string]*models.Restaurant{},
	all:              []*models.Restaurant{},
	byAttractiveness: []*models.Restaurant{},
	categories:       []string{},
	neighborhoods:    []string{},
}

// Service implements interfaces.RestaurantService
type Service struct {
	feedURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	current    atomic.Pointer[index]
}

// NewService creates a service for the feed at feedURL. The dataset is empty
// until the first successful Refresh or Load.
func NewService(feedURL string, timeout time.Duration, logger arbor.ILogger) *Service {
	if timeout <= 0 {
		timeout = DefaultFeedTimeout
	}
	s := &Service{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	s.current.Store(emptyIndex)
	return s
}

// Refresh downloads the feed and swaps in a new index
func (s *Service) Refresh(ctx context.Context) error {
	start := time.Now()
	s.logger.Info().Str("url", s.feedURL).Msg("Fetching restaurant dataset")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		datasetRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		datasetRefreshesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to fetch dataset: %s", resp.Status)
	}

	if err := s.Load(resp.Body); err != nil {
		datasetRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}
	datasetRefreshesTotal.WithLabelValues("ok").Inc()

	s.logger.Info().
		Int("restaurants", s.Count()).
		Str("duration", time.Since(start).String()).
		Msg("Restaurant dataset loaded")
	return nil
}

// Load parses a feed (gzip or plain GeoJSON) and swaps in the resulting index.
// On error the current index is left untouched.
func (s *Service) Load(r io.Reader) error {
	fc, err := decodeFeed(r)
	if err != nil {
		return err
	}

	idx, skipped := buildIndex(fc.Features)
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Msg("Skipped dataset features without a name or coordinates")
	}

	s.current.Store(idx)
	restaurantsIndexed.Set(float64(len(idx.all)))
	return nil
}

func buildIndex(features []feature) (*index, int) {
	idx := &index{
		byID:     make(map[string]*models.Restaurant, len(features)),
		all:      make([]*models.Restaurant, 0, len(features)),
		loadedAt: time.Now(),
	}
	categories := map[string]struct{}{}
	neighborhoods := map[string]struct{}{}
	skipped := 0

	for _, f := range features {
		r, ok := toRestaurant(f)
		if !ok {
			skipped++
			continue
		}

		// A repeated id replaces the earlier entry but keeps its position
		if _, seen := idx.byID[r.ID]; seen {
			for i, existing := range idx.all {
				if existing.ID == r.ID {
					idx.all[i] = r
					break
				}
			}
		} else {
			idx.all = append(idx.all, r)
		}
		idx.byID[r.ID] = r

		if r.Category != "" {
			categories[r.Category] = struct{}{}
		}
		neighborhoods[r.Neighborhood] = struct{}{}
	}

	idx.byAttractiveness = slices.Clone(idx.all)
	slices.SortStableFunc(idx.byAttractiveness, byAttractivenessDesc)

	idx.categories = sortedKeys(categories)
	idx.neighborhoods = sortedKeys(neighborhoods)

	return idx, skipped
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func byAttractivenessDesc(a, b *models.Restaurant) int {
	return cmp.Compare(b.AttractiveScore, a.AttractiveScore)
}

func byName(a, b *models.Restaurant) int {
	if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

func matchesFilters(r *models.Restaurant, category, neighborhood string) bool {
	if category != "" && r.Category != category {
		return false
	}
	if neighborhood != "" && r.Neighborhood != neighborhood {
		return false
	}
	return true
}

// List filters, sorts and paginates the dataset. Total counts the filtered set
// before pagination.
func (s *Service) List(req *models.RestaurantListRequest) *models.RestaurantListResponse {
	idx := s.current.Load()

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset := max(req.Offset, 0)

	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		if id = strings.TrimSpace(id); id != "" {
			excluded[id] = struct{}{}
		}
	}

	filtered := make([]*models.Restaurant, 0, len(idx.all))
	for _, r := range idx.all {
		if _, skip := excluded[r.ID]; skip {
			continue
		}
		if matchesFilters(r, req.Category, req.Neighborhood) {
			filtered = append(filtered, r)
		}
	}

	switch req.SortBy {
	case models.SortRandom:
		rand.Shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
	case models.SortAttractive:
		slices.SortStableFunc(filtered, byAttractivenessDesc)
	case models.SortName:
		slices.SortStableFunc(filtered, byName)
	}

	total := len(filtered)
	start := min(offset, total)
	end := start + min(limit, total-start)

	return &models.RestaurantListResponse{
		Restaurants: filtered[start:end],
		Total:       total,
		HasMore:     end < total,
	}
}

// Top returns the most attractive restaurants with at least MinFaces faces
func (s *Service) Top(req *models.TopRestaurantsRequest) *models.RestaurantListResponse {
	idx := s.current.Load()

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	limit = min(limit, MaxTopLimit)
	minFaces := req.MinFaces
	if minFaces < 0 {
		minFaces = DefaultMinFaces
	}

	ranked := make([]*models.Restaurant, 0, len(idx.byAttractiveness))
	for _, r := range idx.byAttractiveness {
		if r.Faces >= minFaces && matchesFilters(r, req.Category, req.Neighborhood) {
			ranked = append(ranked, r)
		}
	}

	return &models.RestaurantListResponse{
		Restaurants: ranked[:min(limit, len(ranked))],
		Total:       len(ranked),
		HasMore:     len(ranked) > limit,
	}
}

// GetByID looks up a restaurant by its dataset id
func (s *Service) GetByID(id string) (*models.Restaurant, bool) {
	r, ok := s.current.Load().byID[id]
	return r, ok
}

// Categories returns the distinct categories, sorted
func (s *Service) Categories() []string {
	return slices.Clone(s.current.Load().categories)
}

// Neighborhoods returns the distinct neighborhoods, sorted
func (s *Service) Neighborhoods() []string {
	return slices.Clone(s.current.Load().neighborhoods)
}

func (s *Service) Count() int {
	return len(s.current.Load().all)
}

// LoadedAt returns when the current index was built; zero before the first load
func (s *Service) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}

var _ interfaces.RestaurantService = (*Service)(nil)
