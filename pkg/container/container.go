package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"repairhub-backend/internal/config"
	catalogHandler "repairhub-backend/internal/domains/catalog/handler"
	catalogRepo "repairhub-backend/internal/domains/catalog/repository"
	catalogService "repairhub-backend/internal/domains/catalog/service"
	discountHandler "repairhub-backend/internal/domains/discount/handler"
	discountRepo "repairhub-backend/internal/domains/discount/repository"
	discountService "repairhub-backend/internal/domains/discount/service"
	infraCache "repairhub-backend/internal/infrastructure/cache"
	"repairhub-backend/internal/infrastructure/database"
	"repairhub-backend/internal/infrastructure/storage"
	"repairhub-backend/pkg/clock"
	"repairhub-backend/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph shared by the API and the worker.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       *infraCache.RedisCache
	AsynqClient *asynq.Client
	Storage     *storage.MinIOStorage // nil when MinIO is unreachable
	Clock       clock.Clock

	// Repositories
	DiscountRepo discountRepo.DiscountRepository
	CatalogRepo  catalogRepo.Repository
	ModelSource  *catalogRepo.CachedModelSource

	// Services
	PricingService  discountService.PricingServiceInterface
	DiscountService discountService.AdminServiceInterface
	CatalogService  catalogService.ServiceInterface

	// Handlers
	DiscountPublicHandler *discountHandler.PublicHandler
	DiscountAdminHandler  *discountHandler.AdminHandler
	CatalogHandler        *catalogHandler.CatalogHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer wires the application.
// Order: config -> database -> cache/queue/storage -> repositories -> services -> handlers.
func NewContainer() (*Container, error) {
	logger.Info("Initializing DI container", nil)

	c := &Container{Clock: clock.NewRealClock()}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// STEP 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// STEP 3: cache, task queue and object storage
	// Redis is not critical for pricing: the model cache falls through.
	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		logger.Warn("Redis connection failed (non-critical)", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.AsynqClient = asynq.NewClient(c.RedisClientOpt())

	// Object storage only backs the async export reports.
	storageCtx, storageCancel := context.WithTimeout(ctx, 5*time.Second)
	defer storageCancel()
	if c.Storage, err = storage.NewMinIOStorage(storageCtx, cfg.Storage); err != nil {
		logger.Warn("MinIO connection failed (non-critical)", map[string]interface{}{
			"endpoint": cfg.Storage.Endpoint,
			"error":    err.Error(),
		})
	}

	// STEP 4-6
	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	c.initHandlers()

	logger.Info("DI container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
		"tie_break":   cfg.Pricing.TieBreak,
	})
	return c, nil
}

// RedisClientOpt is the asynq connection shared by client, server and scheduler.
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() error {
	pool := c.DB.Pool
	if pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	c.DiscountRepo = discountRepo.NewPostgresRepository(pool)
	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool)
	c.ModelSource = catalogRepo.NewCachedModelSource(c.CatalogRepo, c.Cache, c.Config.Pricing.ModelCacheTTL)
	return nil
}

func (c *Container) initServices() error {
	policy, err := discountService.ParseTieBreakPolicy(c.Config.Pricing.TieBreak)
	if err != nil {
		return err
	}

	c.PricingService = discountService.NewPricingService(c.DiscountRepo, c.ModelSource, c.Clock, policy)
	c.DiscountService = discountService.NewAdminService(c.DiscountRepo, c.Clock)
	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo, c.PricingService)
	return nil
}

func (c *Container) initHandlers() {
	c.DiscountPublicHandler = discountHandler.NewPublicHandler(c.PricingService, c.DiscountService)
	var reports discountHandler.ReportLinker
	if c.Storage != nil {
		reports = c.Storage
	}
	c.DiscountAdminHandler = discountHandler.NewAdminHandler(c.DiscountService, c.AsynqClient, reports, c.Config.Storage.ReportURLExpiry)
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
}

// Cleanup releases connections on shutdown.
func (c *Container) Cleanup() {
	logger.Info("Cleaning up container resources", nil)

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close asynq client", err)
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}
