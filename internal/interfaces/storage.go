package interfaces

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	PlacesCacheStorage() PlacesCacheStorage

	// RunValueLogGC reclaims disk held by overwritten values
	RunValueLogGC() error
	Close() error
}
