package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PlacesCacheStorage implements interfaces.PlacesCacheStorage on badgerhold.
// Records are never deleted on expiry; an expired record reads as absent and is
// replaced on the next write for the same key.
type PlacesCacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	ttl    time.Duration
	now    func() time.Time
}

// NewPlacesCacheStorage creates a cache store using the fixed places TTL
func NewPlacesCacheStorage(db *BadgerDB, logger arbor.ILogger) *PlacesCacheStorage {
	return &PlacesCacheStorage{
		db:     db,
		logger: logger,
		ttl:    models.PlacesCacheTTL,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for expiry checks and new records
func (s *PlacesCacheStorage) WithClock(now func() time.Time) *PlacesCacheStorage {
	s.now = now
	return s
}

func photoKey(entityID string, photoIndex int) string {
	return fmt.Sprintf("%s:%d", entityID, photoIndex)
}

// GetPhoto returns the cached URL for a photo slot
func (s *PlacesCacheStorage) GetPhoto(ctx context.Context, entityID string, photoIndex int) (string, bool, error) {
	var record models.PhotoCacheRecord
	err := s.db.Store().Get(photoKey(entityID, photoIndex), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get photo cache record: %w", err)
	}

	if !record.IsValid(s.now()) {
		return "", false, nil
	}
	if record.PhotoURL == nil {
		return "", true, nil
	}
	return *record.PhotoURL, true, nil
}

func (s *PlacesCacheStorage) newPhotoRecord(entityID string, photoIndex int, photoURL *string, externalID string, now time.Time) *models.PhotoCacheRecord {
	return &models.PhotoCacheRecord{
		Key:        photoKey(entityID, photoIndex),
		EntityID:   entityID,
		PhotoIndex: photoIndex,
		PhotoURL:   photoURL,
		ExternalID: externalID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
}

// SetPhoto upserts one photo slot, resetting its expiry
func (s *PlacesCacheStorage) SetPhoto(ctx context.Context, entityID string, photoIndex int, photoURL *string, externalID string) error {
	record := s.newPhotoRecord(entityID, photoIndex, photoURL, externalID, s.now())
	if err := s.db.Store().Upsert(record.Key, record); err != nil {
		return fmt.Errorf("failed to upsert photo cache record %s: %w", record.Key, err)
	}
	return nil
}

// SetPhotos upserts slots 0..n-1 in one badger transaction
func (s *PlacesCacheStorage) SetPhotos(ctx context.Context, entityID string, photoURLs []string, externalID string) error {
	if len(photoURLs) == 0 {
		return nil
	}

	now := s.now()
	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		for i := range photoURLs {
			photoURL := photoURLs[i]
			record := s.newPhotoRecord(entityID, i, &photoURL, externalID, now)
			if err := s.db.Store().TxUpsert(txn, record.Key, record); err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert photo cache records for %s: %w", entityID, err)
	}

	s.logger.Debug().
		Str("entity_id", entityID).
		Int("photos", len(photoURLs)).
		Msg("Cached photo slots")

	return nil
}

// GetDetails returns nil when no servable record exists
func (s *PlacesCacheStorage) GetDetails(ctx context.Context, entityID string) (*models.PlaceDetails, error) {
	var record models.DetailsCacheRecord
	err := s.db.Store().Get(entityID, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get details cache record: %w", err)
	}

	if !record.IsValid(s.now()) {
		return nil, nil
	}
	return record.ToDetails(), nil
}

// SetDetails upserts the details record for an entity, resetting its expiry
func (s *PlacesCacheStorage) SetDetails(ctx context.Context, entityID string, rating *float64, ratingCount *int, externalID string, photoCount int) error {
	now := s.now()
	record := &models.DetailsCacheRecord{
		EntityID:    entityID,
		Rating:      rating,
		RatingCount: ratingCount,
		ExternalID:  externalID,
		PhotoCount:  photoCount,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	if err := s.db.Store().Upsert(entityID, record); err != nil {
		return fmt.Errorf("failed to upsert details cache record %s: %w", entityID, err)
	}
	return nil
}

// CountPhotos counts physical photo records for an entity, expired or not
func (s *PlacesCacheStorage) CountPhotos(ctx context.Context, entityID string) (int, error) {
	count, err := s.db.Store().Count(&models.PhotoCacheRecord{}, badgerhold.Where("EntityID").Eq(entityID).Index("EntityID"))
	if err != nil {
		return 0, fmt.Errorf("failed to count photo cache records: %w", err)
	}
	return int(count), nil
}

// Stats reports physical and servable record counts
func (s *PlacesCacheStorage) Stats(ctx context.Context) (models.PlacesCacheStats, error) {
	var stats models.PlacesCacheStats
	now := s.now()
	store := s.db.Store()

	photos, err := store.Count(&models.PhotoCacheRecord{}, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count photo cache records: %w", err)
	}
	validPhotos, err := store.Count(&models.PhotoCacheRecord{}, badgerhold.Where("ExpiresAt").Gt(now))
	if err != nil {
		return stats, fmt.Errorf("failed to count valid photo cache records: %w", err)
	}
	details, err := store.Count(&models.DetailsCacheRecord{}, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count details cache records: %w", err)
	}
	validDetails, err := store.Count(&models.DetailsCacheRecord{}, badgerhold.Where("ExpiresAt").Gt(now))
	if err != nil {
		return stats, fmt.Errorf("failed to count valid details cache records: %w", err)
	}

	stats.PhotoRecords = int(photos)
	stats.ValidPhotoRecords = int(validPhotos)
	stats.DetailsRecords = int(details)
	stats.ValidDetailsRecords = int(validDetails)
	return stats, nil
}

var _ interfaces.PlacesCacheStorage = (*PlacesCacheStorage)(nil)
