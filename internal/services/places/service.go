package places

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/singleflight"

	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
)

// DefaultSearchTimeout bounds a shared search that outlives its caller
const DefaultSearchTimeout = 15 * time.Second

// Service implements interfaces.PlacesService with a cache-first policy:
// the cache is consulted before any network call, and every successful match
// populates the details record and all photo slots at once.
type Service struct {
	cache         interfaces.PlacesCacheStorage
	searcher      interfaces.PlaceSearcher
	logger        arbor.ILogger
	group         singleflight.Group
	searchTimeout time.Duration
}

// NewService creates the enrichment service. A nil searcher means no API key is
// configured: lookups are served from cache only and misses degrade to absent.
func NewService(cache interfaces.PlacesCacheStorage, searcher interfaces.PlaceSearcher, logger arbor.ILogger) *Service {
	return &Service{
		cache:         cache,
		searcher:      searcher,
		logger:        logger,
		searchTimeout: DefaultSearchTimeout,
	}
}

// WithSearchTimeout sets the bound on a single upstream search.
func (s *Service) WithSearchTimeout(timeout time.Duration) *Service {
	s.searchTimeout = timeout
	return s
}

// Enabled reports whether upstream lookups are possible
func (s *Service) Enabled() bool {
	return s.searcher != nil
}

// GetPhotoURL returns the media URL for the restaurant's photo at photoIndex
func (s *Service) GetPhotoURL(ctx context.Context, restaurant *models.Restaurant, photoIndex int) (string, bool) {
	photoURL, found, err := s.cache.GetPhoto(ctx, restaurant.ID, photoIndex)
	if err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Int("photo_index", photoIndex).Msg("Photo cache read failed, treating as miss")
	} else if found {
		if photoURL == "" {
			cacheLookupsTotal.WithLabelValues("photo", "negative").Inc()
			return "", false
		}
		cacheLookupsTotal.WithLabelValues("photo", "hit").Inc()
		return photoURL, true
	}
	cacheLookupsTotal.WithLabelValues("photo", "miss").Inc()

	if s.searcher == nil || photoIndex < 0 {
		return "", false
	}

	match, err := s.search(ctx, restaurant)
	if err != nil {
		return "", false
	}

	if match == nil {
		if err := s.cache.SetPhoto(ctx, restaurant.ID, photoIndex, nil, ""); err != nil {
			s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to cache negative photo result")
		}
		return "", false
	}

	if len(match.PhotoReferences) == 0 {
		if err := s.cache.SetPhoto(ctx, restaurant.ID, photoIndex, nil, match.ExternalID); err != nil {
			s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to cache negative photo result")
		}
		return "", false
	}

	// Out of range slots are not persisted; the next request searches again
	if photoIndex >= len(match.PhotoReferences) {
		s.logger.Debug().
			Str("restaurant_id", restaurant.ID).
			Int("photo_index", photoIndex).
			Int("photo_count", len(match.PhotoReferences)).
			Msg("Requested photo index beyond matched place photos")
		return "", false
	}

	return s.searcher.PhotoMediaURL(match.PhotoReferences[photoIndex]), true
}

// GetDetails returns rating data for the restaurant; never nil
func (s *Service) GetDetails(ctx context.Context, restaurant *models.Restaurant) *models.PlaceDetails {
	details, err := s.cache.GetDetails(ctx, restaurant.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Details cache read failed, treating as miss")
	} else if details != nil {
		cacheLookupsTotal.WithLabelValues("details", "hit").Inc()
		return details
	}
	cacheLookupsTotal.WithLabelValues("details", "miss").Inc()

	if s.searcher == nil {
		return &models.PlaceDetails{}
	}

	match, err := s.search(ctx, restaurant)
	if err != nil {
		return &models.PlaceDetails{}
	}

	if match == nil {
		// No match is a valid, empty answer and is cached like any other
		if err := s.cache.SetDetails(ctx, restaurant.ID, nil, nil, "", 0); err != nil {
			s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to cache empty details")
		}
		return &models.PlaceDetails{}
	}

	return &models.PlaceDetails{
		Rating:          match.Rating,
		UserRatingCount: match.RatingCount,
		PhotoCount:      match.PhotoCount(),
	}
}

// search runs at most one upstream search per restaurant at a time. On a match
// it persists the details record and every photo slot before returning.
// A nil match with a nil error means the upstream had no usable result.
func (s *Service) search(ctx context.Context, restaurant *models.Restaurant) (*models.CandidatePlace, error) {
	// The shared search must not die with whichever caller started it
	searchCtx := context.WithoutCancel(ctx)

	v, err, shared := s.group.Do("search:"+restaurant.ID, func() (interface{}, error) {
		timeoutCtx, cancel := context.WithTimeout(searchCtx, s.searchTimeout)
		defer cancel()
		return s.searchAndStore(timeoutCtx, restaurant)
	})
	if shared {
		s.logger.Debug().Str("restaurant_id", restaurant.ID).Msg("Joined in-flight place search")
	}
	if err != nil {
		return nil, err
	}
	return v.(*models.CandidatePlace), nil
}

func (s *Service) searchAndStore(ctx context.Context, restaurant *models.Restaurant) (*models.CandidatePlace, error) {
	start := time.Now()
	candidates, err := s.searcher.TextSearch(ctx, restaurant)
	searchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			searchesTotal.WithLabelValues(outcomeStatus).Inc()
			s.logger.Warn().
				Int("status", statusErr.StatusCode).
				Str("restaurant_id", restaurant.ID).
				Str("name", restaurant.Name).
				Msg("Places search rejected, treating as no match")
			return nil, nil
		}

		searchesTotal.WithLabelValues(outcomeTransport).Inc()
		s.logger.Warn().
			Err(err).
			Str("restaurant_id", restaurant.ID).
			Str("name", restaurant.Name).
			Msg("Places search failed")
		return nil, err
	}

	match, ok := SelectBestMatch(restaurant, candidates)
	if !ok {
		searchesTotal.WithLabelValues(outcomeNoMatch).Inc()
		s.logger.Debug().Str("restaurant_id", restaurant.ID).Str("name", restaurant.Name).Msg("Places search returned no candidates")
		return nil, nil
	}
	searchesTotal.WithLabelValues(outcomeMatch).Inc()

	if err := s.cache.SetDetails(ctx, restaurant.ID, match.Rating, match.RatingCount, match.ExternalID, match.PhotoCount()); err != nil {
		s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to cache place details")
	}

	if match.PhotoCount() > 0 {
		photoURLs := make([]string, len(match.PhotoReferences))
		for i, ref := range match.PhotoReferences {
			photoURLs[i] = s.searcher.PhotoMediaURL(ref)
		}
		if err := s.cache.SetPhotos(ctx, restaurant.ID, photoURLs, match.ExternalID); err != nil {
			s.logger.Warn().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to cache place photos")
		}
	}

	s.logger.Debug().
		Str("restaurant_id", restaurant.ID).
		Str("external_id", match.ExternalID).
		Str("display_name", match.DisplayName).
		Int("candidates", len(candidates)).
		Int("photos", match.PhotoCount()).
		Msg("Matched restaurant to place")

	return match, nil
}

var _ interfaces.PlacesService = (*Service)(nil)
