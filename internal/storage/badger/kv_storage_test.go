package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/interfaces"
)

func TestKVStorage_CaseInsensitiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewKVStorage(newTestDB(t), arbor.NewLogger())

	isNew, err := kv.Upsert(ctx, "Google_Places_API_Key", "secret", "test")
	require.NoError(t, err)
	assert.True(t, isNew)

	value, err := kv.Get(ctx, "google_places_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret", value)

	isNew, err = kv.Upsert(ctx, "GOOGLE_PLACES_API_KEY", "rotated", "test")
	require.NoError(t, err)
	assert.False(t, isNew)

	pairs, err := kv.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "rotated", pairs[0].Value)

	require.NoError(t, kv.Delete(ctx, "google_places_api_key"))
	_, err = kv.Get(ctx, "google_places_api_key")
	assert.True(t, errors.Is(err, interfaces.ErrKeyNotFound))
	assert.True(t, errors.Is(kv.Delete(ctx, "missing"), interfaces.ErrKeyNotFound))
}

func TestManager_LoadEnvFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(`# local secrets
GOOGLE_PLACES_API_KEY="from-dotenv"
EMPTY=
`), 0600))

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(dir, "db")})
	require.NoError(t, err)
	defer manager.Close()

	require.NoError(t, manager.LoadEnvFile(ctx, envPath))
	require.NoError(t, manager.LoadEnvFile(ctx, filepath.Join(dir, "missing.env")))

	value, err := manager.KeyValueStorage().Get(ctx, common.PlacesAPIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", value)

	_, err = manager.KeyValueStorage().Get(ctx, "empty")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	key, err := common.ResolveAPIKey(ctx, manager.KeyValueStorage(), common.PlacesAPIKeyName, "")
	if os.Getenv("TRESTY_PLACES_API_KEY") == "" && os.Getenv("GOOGLE_PLACES_API_KEY") == "" {
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", key)
	}
}

func TestManager_LoadEnvFile_RemovesStaleKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GOOGLE_PLACES_API_KEY=old-key\nKEEP_ME=yes\n"), 0600))

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(dir, "db")})
	require.NoError(t, err)
	defer manager.Close()

	kv := manager.KeyValueStorage()
	require.NoError(t, kv.Set(ctx, "manual_setting", "set-by-hand", "Set via API"))
	require.NoError(t, manager.LoadEnvFile(ctx, envPath))

	value, err := kv.Get(ctx, common.PlacesAPIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "old-key", value)

	// Key removed from the file, another blanked out
	require.NoError(t, os.WriteFile(envPath, []byte("KEEP_ME=\nNEW_KEY=fresh\n"), 0600))
	require.NoError(t, manager.LoadEnvFile(ctx, envPath))

	_, err = kv.Get(ctx, common.PlacesAPIKeyName)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
	_, err = kv.Get(ctx, "keep_me")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	value, err = kv.Get(ctx, "new_key")
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)

	value, err = kv.Get(ctx, "manual_setting")
	require.NoError(t, err)
	assert.Equal(t, "set-by-hand", value)
}

func TestManager_RunValueLogGC(t *testing.T) {
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	defer manager.Close()

	// Nothing to reclaim on a fresh store is not an error
	assert.NoError(t, manager.RunValueLogGC())
}
