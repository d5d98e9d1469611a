package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/config"
	"github.com/strideapp/stride/internal/db"
	"github.com/strideapp/stride/internal/githubstats"
	"github.com/strideapp/stride/internal/provider"
	"github.com/strideapp/stride/internal/repository"
	"github.com/strideapp/stride/internal/service"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	LedgerService *service.LedgerService
	WidgetService *service.WidgetService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	objectiveRepository := repository.NewObjectiveRepository(database)
	ledgerEntryRepository := repository.NewLedgerEntryRepository(database)
	widgetRepository := repository.NewWidgetRepository(database)

	// Cache store: Redis when configured, in-process fallback otherwise.
	// The fallback is explicit and single-process only.
	store := newStore(cfg)
	statCache := cache.NewStatCache(store, cfg.StatCacheTTL)
	snapshotCache := cache.NewSnapshotCache(store)
	invalidator := cache.NewInvalidator(widgetRepository, snapshotCache)

	// Providers
	statsClient := githubstats.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken)
	registry := provider.NewRegistry(
		provider.NewObjectiveProvider(ledgerEntryRepository),
		provider.NewExternalProvider(statCache, statsClient),
	)
	dispatcher := provider.NewDispatcher(registry)

	// Services
	ledgerService := service.NewLedgerService(objectiveRepository, ledgerEntryRepository, invalidator)
	widgetService := service.NewWidgetService(widgetRepository, dispatcher, snapshotCache, invalidator)

	return &App{
		Cfg:           cfg,
		DB:            database,
		LedgerService: ledgerService,
		WidgetService: widgetService,
	}, nil
}

func newStore(cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		slog.Warn("no REDIS_ADDR configured, using in-process cache store")
		return cache.NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return cache.NewRedisStore(rdb, cfg.CacheTTL)
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
