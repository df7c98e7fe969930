package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/tresty/internal/interfaces"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.PlacesAPI.BaseURL)
	assert.Equal(t, 800, cfg.PlacesAPI.MaxWidthPx)
	assert.Equal(t, "0 0 * * *", cfg.Scheduler.RefreshSchedule)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 4000
host = "127.0.0.1"

[places_api]
city = "Oakland"
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 5000
`), 0644))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "Oakland", cfg.PlacesAPI.City)
	// Untouched sections keep defaults
	assert.Equal(t, 3, cfg.PlacesAPI.MaxResultCount)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TRESTY_SERVER_PORT", "")
	t.Setenv("PORT", "8081")
	t.Setenv("TRESTY_SERVER_HOST", "localhost")
	t.Setenv("TRESTY_DATASET_URL", "")
	t.Setenv("TRESTY_CORS_ORIGIN", "")
	t.Setenv("LOOKSMAPPING_URL", "https://example.com/places.geojson.gz")
	t.Setenv("CORS_ORIGIN", "https://tresty.example.com")
	t.Setenv("TRESTY_LOG_OUTPUT", "stdout, file")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "https://example.com/places.geojson.gz", cfg.Dataset.URL)
	assert.Equal(t, "https://tresty.example.com", cfg.CORS.Origin)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestApplyEnvOverrides_PrefixedNameWins(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("TRESTY_SERVER_PORT", "9090")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 3001, cfg.Server.Port)

	ApplyFlagOverrides(cfg, 7000, "example.local")
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "example.local", cfg.Server.Host)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad base url", func(c *Config) { c.PlacesAPI.BaseURL = "not a url" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad cron", func(c *Config) { c.Scheduler.RefreshSchedule = "every day" }, true},
		{"bad cron ignored when disabled", func(c *Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.RefreshSchedule = "every day"
		}, false},
		{"bad timeout", func(c *Config) { c.PlacesAPI.RequestTimeout = "soon" }, true},
		{"zero inbound rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type stubKV struct {
	interfaces.KeyValueStorage
	values map[string]string
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", interfaces.ErrKeyNotFound
}

func TestResolveAPIKey_Priority(t *testing.T) {
	ctx := context.Background()
	kv := &stubKV{values: map[string]string{PlacesAPIKeyName: "kv-key"}}

	t.Setenv("TRESTY_PLACES_API_KEY", "")
	t.Setenv("GOOGLE_PLACES_API_KEY", "")

	key, err := ResolveAPIKey(ctx, kv, PlacesAPIKeyName, "config-key")
	require.NoError(t, err)
	assert.Equal(t, "kv-key", key)

	key, err = ResolveAPIKey(ctx, nil, PlacesAPIKeyName, "config-key")
	require.NoError(t, err)
	assert.Equal(t, "config-key", key)

	t.Setenv("GOOGLE_PLACES_API_KEY", "env-key")
	key, err = ResolveAPIKey(ctx, kv, PlacesAPIKeyName, "config-key")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	t.Setenv("GOOGLE_PLACES_API_KEY", "")
	_, err = ResolveAPIKey(ctx, nil, PlacesAPIKeyName, "")
	assert.Error(t, err)
}

func TestNewRestaurantID(t *testing.T) {
	id := NewRestaurantID("Zuni Cafe", 37.7736, -122.4216)
	assert.Len(t, id, 12)
	assert.Equal(t, id, NewRestaurantID("Zuni Cafe", 37.7736, -122.4216))
	assert.NotEqual(t, id, NewRestaurantID("Zuni Cafe", 37.7737, -122.4216))
}
