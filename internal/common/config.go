package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/tresty/internal/interfaces"
)

// PlacesAPIKeyName is the KV store key holding the Google Places API key
const PlacesAPIKeyName = "google_places_api_key"

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	PlacesAPI   PlacesAPIConfig `toml:"places_api"`
	Dataset     DatasetConfig   `toml:"dataset"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	CORS        CORSConfig      `toml:"cors"`
	RateLimit   RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger  BadgerConfig `toml:"badger"`
	EnvFile string       `toml:"env_file"` // .env file loaded into the KV store on startup
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
}

// PlacesAPIConfig contains Google Places API (New) configuration
type PlacesAPIConfig struct {
	APIKey             string  `toml:"api_key"`
	BaseURL            string  `toml:"base_url" validate:"required,url"`
	City               string  `toml:"city" validate:"required"`               // Appended to every text search query
	RequestTimeout     string  `toml:"request_timeout"`                        // e.g. "10s"
	RequestsPerSecond  float64 `toml:"requests_per_second" validate:"gt=0"`    // Outbound pacing
	Burst              int     `toml:"burst" validate:"min=1"`                 // Outbound burst
	MaxWidthPx         int     `toml:"max_width_px" validate:"min=1,max=4800"` // Photo media width
	MaxResultCount     int     `toml:"max_result_count" validate:"min=1,max=20"`
	LocationBiasRadius float64 `toml:"location_bias_radius" validate:"gt=0"` // Meters
}

// DatasetConfig points at the gzip GeoJSON restaurant feed
type DatasetConfig struct {
	URL            string `toml:"url" validate:"required,url"`
	RequestTimeout string `toml:"request_timeout"`
}

// SchedulerConfig contains cron schedules for background jobs
type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`
	RefreshSchedule string `toml:"refresh_schedule"` // Dataset refresh (standard 5-field cron)
	GCSchedule      string `toml:"gc_schedule"`      // Badger value-log GC
}

// CORSConfig lists the browser origins allowed to call the API
type CORSConfig struct {
	Origin          string   `toml:"origin"`           // Primary frontend origin
	AllowedSuffixes []string `toml:"allowed_suffixes"` // Host suffixes accepted on https origins, e.g. ".vercel.app"
}

// RateLimitConfig controls per-client inbound rate limiting
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"min=1"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3001,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/cache",
			},
			EnvFile: ".env",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		PlacesAPI: PlacesAPIConfig{
			BaseURL:            "https://places.googleapis.com/v1",
			City:               "San Francisco",
			RequestTimeout:     "10s",
			RequestsPerSecond:  10,
			Burst:              10,
			MaxWidthPx:         800,
			MaxResultCount:     3,
			LocationBiasRadius: 200.0,
		},
		Dataset: DatasetConfig{
			URL:            "https://walzr.com/looksmapping/places_sf.geojson.gz",
			RequestTimeout: "60s",
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			RefreshSchedule: "0 0 * * *", // Midnight daily
			GCSchedule:      "17 * * * *",
		},
		CORS: CORSConfig{
			Origin:          "http://localhost:3000",
			AllowedSuffixes: []string{".vercel.app"},
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             10,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal merges with existing values, later values override
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// TRESTY_* names win over the short deployment names (PORT, HOST, ...).
func applyEnvOverrides(config *Config) {
	if env := firstEnv("TRESTY_ENV", "GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := firstEnv("TRESTY_SERVER_PORT", "PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := firstEnv("TRESTY_SERVER_HOST", "HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := firstEnv("TRESTY_BADGER_PATH", "BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("TRESTY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TRESTY_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Places API configuration (the key itself is resolved by ResolveAPIKey)
	if baseURL := os.Getenv("TRESTY_PLACES_BASE_URL"); baseURL != "" {
		config.PlacesAPI.BaseURL = baseURL
	}
	if city := os.Getenv("TRESTY_PLACES_CITY"); city != "" {
		config.PlacesAPI.City = city
	}

	// Dataset configuration
	if feedURL := firstEnv("TRESTY_DATASET_URL", "LOOKSMAPPING_URL"); feedURL != "" {
		config.Dataset.URL = feedURL
	}

	// CORS configuration
	if origin := firstEnv("TRESTY_CORS_ORIGIN", "CORS_ORIGIN"); origin != "" {
		config.CORS.Origin = origin
	}

	// Scheduler configuration
	if enabled := os.Getenv("TRESTY_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks field constraints and cron expressions
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Scheduler.Enabled {
		for _, schedule := range []string{c.Scheduler.RefreshSchedule, c.Scheduler.GCSchedule} {
			if schedule == "" {
				continue
			}
			if err := ValidateSchedule(schedule); err != nil {
				return fmt.Errorf("invalid scheduler configuration: %w", err)
			}
		}
	}

	for name, d := range map[string]string{
		"places_api.request_timeout": c.PlacesAPI.RequestTimeout,
		"dataset.request_timeout":    c.Dataset.RequestTimeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}

	return nil
}

// ValidateSchedule validates a standard 5-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// ParseDurationOr parses a duration string, returning fallback when empty or invalid
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → KV store → config fallback → error
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		PlacesAPIKeyName: {"TRESTY_PLACES_API_KEY", "GOOGLE_PLACES_API_KEY"},
	}

	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		if envValue := firstEnv(envVarNames...); envValue != "" {
			return envValue, nil
		}
	}

	// KV store (medium priority - .env file loaded at startup)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
