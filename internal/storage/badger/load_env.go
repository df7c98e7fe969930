package badger

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ternarybob/tresty/internal/interfaces"
)

const envFileDescription = "Loaded from .env file"

// LoadEnvFile copies variables from a .env file into the KV store.
// Keys are stored lower-cased, so GOOGLE_PLACES_API_KEY becomes google_places_api_key.
// Pairs left over from an earlier load whose key is no longer set in the
// file are removed. A missing or unreadable file is not an error and leaves
// the store untouched.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	if filePath == "" {
		return nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		m.logger.Debug().Str("file", filePath).Msg(".env file does not exist, skipping")
		return nil
	}

	values, err := godotenv.Read(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse .env file")
		return nil
	}

	current := make(map[string]bool, len(values))
	for key, value := range values {
		if strings.TrimSpace(key) != "" && value != "" {
			current[normalizeKey(key)] = true
		}
	}
	removed := m.pruneEnvPairs(ctx, current)

	loaded, skipped, failed := 0, 0, 0
	for key, value := range values {
		if strings.TrimSpace(key) == "" || value == "" {
			skipped++
			continue
		}

		isNew, err := m.kv.Upsert(ctx, key, value, envFileDescription)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable from .env")
			failed++
			continue
		}

		if isNew {
			m.logger.Debug().Str("key", key).Msg("Loaded new variable from .env")
		}
		loaded++
	}

	m.logger.Debug().
		Str("file", filePath).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Int("removed", removed).
		Int("errors", failed).
		Msg("Finished loading variables from .env file")

	return nil
}

// pruneEnvPairs deletes pairs previously loaded from a .env file whose key is not in keep.
func (m *Manager) pruneEnvPairs(ctx context.Context, keep map[string]bool) int {
	pairs, err := m.kv.List(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to list variables loaded from .env")
		return 0
	}

	removed := 0
	for _, pair := range pairs {
		if pair.Description != envFileDescription || keep[pair.Key] {
			continue
		}
		if err := m.kv.Delete(ctx, pair.Key); err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
			m.logger.Error().Err(err).Str("key", pair.Key).Msg("Failed to remove stale .env variable")
			continue
		}
		m.logger.Debug().Str("key", pair.Key).Msg("Removed variable no longer present in .env")
		removed++
	}
	return removed
}
