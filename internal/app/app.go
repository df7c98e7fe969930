package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/common"
	"github.com/ternarybob/tresty/internal/handlers"
	"github.com/ternarybob/tresty/internal/interfaces"
	"github.com/ternarybob/tresty/internal/services/places"
	"github.com/ternarybob/tresty/internal/services/restaurants"
	"github.com/ternarybob/tresty/internal/services/scheduler"
	"github.com/ternarybob/tresty/internal/storage"
)

// Job names registered with the scheduler
const (
	JobDatasetRefresh = "dataset_refresh"
	JobCacheGC        = "cache_gc"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	StorageManager interfaces.StorageManager

	// Services
	RestaurantService interfaces.RestaurantService
	PlacesService     interfaces.PlacesService
	SchedulerService  interfaces.SchedulerService

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	RestaurantHandler *handlers.RestaurantHandler
	PhotoHandler      *handlers.PhotoHandler
	SchedulerHandler  *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Int("restaurants", app.RestaurantService.Count()).
		Bool("places_enabled", app.placesEnabled()).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens the Badger store and loads the .env file into the KV store
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	// Variables from .env are available to ResolveAPIKey through the KV store
	if err := storageManager.LoadEnvFile(context.Background(), a.Config.Storage.EnvFile); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes business services in dependency order:
// places enrichment, the restaurant dataset, then background jobs.
func (a *App) initServices() error {
	a.PlacesService = a.newPlacesService()

	restaurantService := restaurants.NewService(
		a.Config.Dataset.URL,
		common.ParseDurationOr(a.Config.Dataset.RequestTimeout, restaurants.DefaultFeedTimeout),
		a.Logger,
	)
	a.RestaurantService = restaurantService

	// A failed first load leaves the dataset empty until the next scheduled refresh
	if err := a.refreshDataset(); err != nil {
		a.Logger.Error().Err(err).Str("url", a.Config.Dataset.URL).Msg("Initial dataset load failed")
	}

	schedulerService := scheduler.NewService(a.Logger)
	a.SchedulerService = schedulerService

	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled")
		return nil
	}

	if a.Config.Scheduler.RefreshSchedule != "" {
		if err := schedulerService.RegisterJob(JobDatasetRefresh, a.Config.Scheduler.RefreshSchedule, a.refreshDataset); err != nil {
			return fmt.Errorf("failed to register %s job: %w", JobDatasetRefresh, err)
		}
	}
	if a.Config.Scheduler.GCSchedule != "" {
		if err := schedulerService.RegisterJob(JobCacheGC, a.Config.Scheduler.GCSchedule, a.StorageManager.RunValueLogGC); err != nil {
			return fmt.Errorf("failed to register %s job: %w", JobCacheGC, err)
		}
	}

	if err := schedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// newPlacesService builds the enrichment service. Without an API key the
// service runs cache-only and every miss degrades to an absent result.
func (a *App) newPlacesService() *places.Service {
	cache := a.StorageManager.PlacesCacheStorage()
	cfg := a.Config.PlacesAPI

	apiKey, err := common.ResolveAPIKey(context.Background(), a.StorageManager.KeyValueStorage(), common.PlacesAPIKeyName, cfg.APIKey)
	if err != nil {
		a.Logger.Warn().Msg("Google Places API key not configured, photo and details enrichment disabled")
		return places.NewService(cache, nil, a.Logger)
	}

	timeout := common.ParseDurationOr(cfg.RequestTimeout, places.DefaultTimeout)
	client := places.NewClient(apiKey,
		places.WithBaseURL(cfg.BaseURL),
		places.WithLogger(a.Logger),
		places.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		places.WithCity(cfg.City),
		places.WithMaxWidthPx(cfg.MaxWidthPx),
		places.WithMaxResultCount(cfg.MaxResultCount),
		places.WithLocationBiasRadius(cfg.LocationBiasRadius),
		places.WithTimeout(timeout),
	)

	a.Logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("city", cfg.City).
		Float64("requests_per_second", cfg.RequestsPerSecond).
		Msg("Google Places enrichment enabled")

	return places.NewService(cache, client, a.Logger).WithSearchTimeout(timeout + 5*time.Second)
}

func (a *App) placesEnabled() bool {
	svc, ok := a.PlacesService.(*places.Service)
	return ok && svc.Enabled()
}

func (a *App) refreshDataset() error {
	timeout := common.ParseDurationOr(a.Config.Dataset.RequestTimeout, restaurants.DefaultFeedTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout+10*time.Second)
	defer cancel()
	return a.RestaurantService.Refresh(ctx)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.RestaurantService, a.StorageManager.PlacesCacheStorage(), a.Logger)
	a.RestaurantHandler = handlers.NewRestaurantHandler(a.RestaurantService, a.Logger)
	a.PhotoHandler = handlers.NewPhotoHandler(a.RestaurantService, a.PlacesService, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService)
}

// Close stops background jobs and closes the cache store
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
