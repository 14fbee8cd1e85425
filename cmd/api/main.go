package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"

	_ "hostel-catalog/docs"
	"hostel-catalog/internal/cache"
	"hostel-catalog/internal/config"
	"hostel-catalog/internal/database"
	"hostel-catalog/internal/events"
	"hostel-catalog/internal/handlers"
	"hostel-catalog/internal/health"
	"hostel-catalog/internal/metrics"
	"hostel-catalog/internal/middleware"
	"hostel-catalog/internal/repository"
	"hostel-catalog/internal/routes"
	"hostel-catalog/internal/service"
	"hostel-catalog/internal/storage"
)

// @title        Hostel Catalog API
// @version      1.0
// @description  Product catalog for the hostel finder app: CRUD, category filter, featured products and image upload.
// @host         localhost:8080
// @BasePath     /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("❌ server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}()
	logger.Info("✅ Connected to MongoDB", "database", cfg.MongoDB)
	db := client.Database(cfg.MongoDB)

	productCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer productCache.Close()

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	images, err := storage.NewImageStore(cfg.Upload)
	if err != nil {
		return err
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	counters := metrics.NewProductCounters(prometheus.DefaultRegisterer)

	healthChecker, err := health.New(health.Checks(cfg)...)
	if err != nil {
		return err
	}

	svc := service.New(service.Deps{
		Products:   repository.NewProductRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Images:     images,
		Cache:      productCache,
		CacheTTL:   cfg.Cache.TTL,
		Publisher:  publisher,
		Counters:   counters,
		Logger:     logger,
	})

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(httpMetrics.Middleware())
	routes.RegisterRoutes(router, handlers.NewProductHandler(svc, cfg.Upload.MaxBytes), routes.Operational{
		Health:  healthChecker.Handler(),
		Metrics: metrics.Handler(prometheus.DefaultGatherer),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server running", "port", cfg.Port, "env", cfg.Env, "cache", cfg.Cache.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("🛑 Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("👋 Server stopped")
	return nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewRedis(client, cfg.TTL), nil
	case config.CacheBackendNone:
		return cache.Nop{}, nil
	default:
		return cache.NewMemory(cfg.TTL), nil
	}
}

// newPublisher abre la conexión a RabbitMQ solo si hay URL configurada.
func newPublisher(cfg *config.Config, logger *slog.Logger) (service.Publisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("📭 RABBITMQ_URL not set, product events disabled")
		return events.NopPublisher{}, func() {}, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	publisher, err := events.NewRabbitPublisher(conn, cfg.EventsQueue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("init publisher: %w", err)
	}

	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}, nil
}
