package storage

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/storage/badger"
)

// NewStorageManager opens the embedded store described by config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (*badger.Manager, error) {
	return badger.NewManager(logger, &config.Storage.Badger)
}
