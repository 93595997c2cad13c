package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/draftops/outreach-engine/internal/config"
	"github.com/draftops/outreach-engine/internal/handler"
	"github.com/draftops/outreach-engine/internal/infra/postgresql"
	"github.com/draftops/outreach-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/draftops/outreach-engine/internal/infra/redis"
	"github.com/draftops/outreach-engine/internal/observability"
	"github.com/draftops/outreach-engine/internal/provider"
	"github.com/draftops/outreach-engine/internal/repository"
	"github.com/draftops/outreach-engine/internal/service"
	"github.com/draftops/outreach-engine/internal/store"
	"github.com/draftops/outreach-engine/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	cache, err := infraredis.NewEnrichmentCache(rdb, time.Duration(cfg.EnrichmentCacheTTL)*time.Minute)
	if err != nil {
		logger.Fatal("enrichment cache initialization failed", zap.Error(err))
	}

	rateLimiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.EnrichRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	enricher, err := provider.NewAnalyzerClient(cfg.AnalyzerURL)
	if err != nil {
		logger.Fatal("analyzer client initialization failed", zap.Error(err))
	}

	drafts, err := provider.NewDraftClient(cfg.DraftServiceURL)
	if err != nil {
		logger.Fatal("draft client initialization failed", zap.Error(err))
	}

	batch := store.NewBatchStore()
	audit := repository.NewGormDraftRepo(db)
	metrics := observability.NewMetrics()

	batchService, err := service.NewBatchService(batch, enricher, drafts, cache, rateLimiter, audit, logger)
	if err != nil {
		logger.Fatal("batch service initialization failed", zap.Error(err))
	}
	batchService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:      "outreach-engine",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(metrics.Handler())(c.Context())
		return nil
	})
	if err := handler.RegisterBatchRoutes(app, batch, batchService); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}
	if err := handler.RegisterDraftRoutes(app, audit); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	go func() {
		logger.Info("outreach-engine api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
