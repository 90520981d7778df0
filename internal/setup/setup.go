// Package setup bootstraps the application's shared dependencies in order
// and tears them down in reverse.
package setup

import (
	"context"
	"log"

	"github.com/askora/askora/internal/ai"
	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/database"
	"github.com/askora/askora/internal/moderation"
	"github.com/askora/askora/internal/notify"
	"github.com/askora/askora/internal/queue"
	"github.com/askora/askora/internal/redis"
	"github.com/askora/askora/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Handles are created once at startup and injected into workers.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           database.Client
	Store        *content.Store
	RedisManager *redis.Manager
	Queue        *queue.Client
	Scorer       *ai.Scorer
	Notifier     *notify.Notifier
	Invalidator  *cache.Invalidator
	Points       *moderation.PointsTracker
}

// InitializeApp bootstraps all application dependencies in the correct
// order, ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	redisManager := redis.NewManager(&cfg.Redis, logger)

	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, logger, true)
	if err != nil {
		return nil, err
	}

	store, err := content.Connect(ctx, &cfg.MongoDB, logger)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	// Each concern gets its own Redis database.
	queueRedis, err := redisManager.GetClient(redis.QueueDBIndex)
	if err != nil {
		return nil, err
	}

	pubsubRedis, err := redisManager.GetClient(redis.PubSubDBIndex)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, err
	}

	counterRedis, err := redisManager.GetClient(redis.CounterDBIndex)
	if err != nil {
		return nil, err
	}

	queueClient := queue.NewClient(queueRedis, &cfg.Worker, logger)

	oracle := ai.NewOracleClient(&cfg.Oracle, logger)
	scorer := ai.NewScorer(oracle, logger)

	notifier := notify.NewNotifier(pubsubRedis, logger)
	invalidator := cache.NewInvalidator(cacheRedis, logger)
	points := moderation.NewPointsTracker(counterRedis, &cfg.Moderation, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Store:        store,
		RedisManager: redisManager,
		Queue:        queueClient,
		Scorer:       scorer,
		Notifier:     notifier,
		Invalidator:  invalidator,
		Points:       points,
	}, nil
}

// Cleanup shuts down all components in reverse initialization order. Errors
// are logged, not returned, so every component gets a shutdown attempt.
func (a *App) Cleanup(ctx context.Context) {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := a.Store.Close(ctx); err != nil {
		log.Printf("Failed to close document store: %v", err)
	}

	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Redis connections close last; other components may still publish
	// during shutdown.
	a.RedisManager.Close()
}
