// Package app builds every component from the configuration and wires
// them into the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/bilgisen/cyberpress/internal/api"
	"github.com/bilgisen/cyberpress/internal/cache"
	"github.com/bilgisen/cyberpress/internal/config"
	"github.com/bilgisen/cyberpress/internal/creative"
	"github.com/bilgisen/cyberpress/internal/logger"
	"github.com/bilgisen/cyberpress/internal/middleware"
	"github.com/bilgisen/cyberpress/internal/news"
	"github.com/bilgisen/cyberpress/internal/prices"
	"github.com/bilgisen/cyberpress/internal/scheduler"
	"github.com/bilgisen/cyberpress/internal/storage"
	"github.com/bilgisen/cyberpress/internal/store"
	"github.com/bilgisen/cyberpress/internal/tools"
	"github.com/bilgisen/cyberpress/internal/upstream"
)

type App struct {
	Config    *config.Config
	Cache     cache.Cache
	Storage   *storage.Storage
	Backup    *storage.Backup
	Scheduler *scheduler.Scheduler
	Store     *store.Store
	Server    *fiber.App

	log zerolog.Logger
}

// New builds the application. Nothing is scheduled until Start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Component("app")

	respCache, err := newCache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewFileBackend(cfg.DataPath)
	if err != nil {
		respCache.Close()
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}
	local := storage.New(backend, cfg.StoragePrefix, storage.WithLogger(logger.Component("storage")))

	var backup *storage.Backup
	if cfg.BackupEnabled() {
		r2, err := storage.NewR2Client(ctx, cfg)
		if err != nil {
			respCache.Close()
			return nil, err
		}
		backup = storage.NewBackup(local, r2, cfg.R2Bucket, logger.Component("backup"))
	}

	boundary := func(name, baseURL string, headers map[string]string) *upstream.Client {
		return upstream.New(upstream.Options{
			Name:       name,
			BaseURL:    baseURL,
			Timeout:    cfg.BoundaryTimeout,
			RetryCount: cfg.RetryCount,
			Headers:    headers,
			Cache:      respCache,
			CacheTTL:   cfg.CacheTTL,
			Logger:     logger.Component("upstream"),
		})
	}

	newsOpts := news.Options{
		Feeds:  boundary("feeds", "", map[string]string{"User-Agent": "CyberPress/1.0"}),
		Logger: logger.Component("news"),
	}
	if cfg.NewsSearchAPIKey != "" {
		newsOpts.Search = boundary("news-search", cfg.NewsSearchURL, map[string]string{
			"Authorization": "Bearer " + cfg.NewsSearchAPIKey,
		})
		newsOpts.SearchModel = cfg.NewsSearchModel
	}

	var priceHeaders map[string]string
	if cfg.CoinGeckoAPIKey != "" {
		priceHeaders = map[string]string{prices.APIKeyHeader: cfg.CoinGeckoAPIKey}
	}
	priceClient := prices.New(prices.Options{
		API:    boundary("coingecko", cfg.CoinGeckoURL, priceHeaders),
		Logger: logger.Component("prices"),
	})

	gh, err := tools.NewGitHubClient(cfg.GitHubToken, cfg.GitHubURL)
	if err != nil {
		respCache.Close()
		return nil, err
	}
	toolClient := tools.New(tools.Options{
		GitHub:   gh,
		Boundary: boundary("github", "", nil),
		Logger:   logger.Component("tools"),
	})

	st := store.New(store.Deps{
		News:        news.New(newsOpts),
		Prices:      priceClient,
		Tools:       toolClient,
		Creative:    creative.New(nil),
		Storage:     local,
		Cache:       local,
		CryptoLimit: cfg.CryptoLimit,
		ToolsLimit:  cfg.ToolsLimit,
		Logger:      logger.Component("store"),
	})

	jobs := scheduler.New(
		scheduler.WithLocation(cfg.Location()),
		scheduler.WithLogger(logger.Component("scheduler")),
	)

	server := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})
	server.Use(recover.New())
	server.Use(middleware.RequestLogger())
	api.SetupRoutes(server, api.NewHandlers(st, priceClient, toolClient, jobs, local, logger.Component("api")), cfg.AdminAPIKey)

	return &App{
		Config:    cfg,
		Cache:     respCache,
		Storage:   local,
		Backup:    backup,
		Scheduler: jobs,
		Store:     st,
		Server:    server,
		log:       log,
	}, nil
}

// newCache connects to Redis when configured and otherwise keeps responses in memory.
func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("Using in-memory response cache")
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
	}
	log.Info().Msg("Using Redis response cache")
	return rc, nil
}

// Start restores cached sections, installs the default schedules and, when
// configured, refreshes every section in the background.
func (a *App) Start(ctx context.Context) error {
	a.Store.Warm()

	if err := InstallSchedules(a.Scheduler, Targets{
		Store:   a.Store,
		Storage: a.Storage,
		Backup:  a.Backup,
	}); err != nil {
		return err
	}

	if a.Config.RefreshOnStart {
		go func() {
			start := time.Now()
			if err := a.Store.RefreshAll(ctx); err != nil {
				a.log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Initial refresh finished with failures")
				return
			}
			a.log.Info().Dur("duration", time.Since(start)).Msg("Initial refresh finished")
		}()
	}
	return nil
}

// Close stops every job, then shuts the server down and closes the cache.
func (a *App) Close(ctx context.Context) error {
	a.Scheduler.ClearAll()
	return errors.Join(
		a.Server.ShutdownWithContext(ctx),
		a.Cache.Close(),
	)
}
