package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/interfaces"
)

// valueLogDiscardRatio is the fraction of a value-log file that must be stale before GC rewrites it
const valueLogDiscardRatio = 0.5

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	kv     interfaces.KeyValueStorage
	places *PlacesCacheStorage
	logger arbor.ILogger
}

// NewManager opens the Badger database and builds the stores on top of it
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		places: NewPlacesCacheStorage(db, logger),
		logger: logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// PlacesCacheStorage returns the places enrichment cache
func (m *Manager) PlacesCacheStorage() interfaces.PlacesCacheStorage {
	return m.places
}

// RunValueLogGC reclaims disk held by overwritten cache records
func (m *Manager) RunValueLogGC() error {
	rewritten, err := m.db.RunValueLogGC(valueLogDiscardRatio)
	if err != nil {
		return err
	}
	m.logger.Debug().Int("files_rewritten", rewritten).Msg("Badger value log GC complete")
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

var _ interfaces.StorageManager = (*Manager)(nil)
