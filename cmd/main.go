package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/menu-order/internal/cache"
	"github.com/fjod/go_cart/menu-order/internal/catalog"
	"github.com/fjod/go_cart/menu-order/internal/checkout"
	"github.com/fjod/go_cart/menu-order/internal/config"
	"github.com/fjod/go_cart/menu-order/internal/events"
	h "github.com/fjod/go_cart/menu-order/internal/http"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"github.com/fjod/go_cart/menu-order/internal/session"
	"github.com/fjod/go_cart/menu-order/pkg/circuitbreaker"
	"github.com/fjod/go_cart/menu-order/pkg/logger"
)

const evictInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(logger.Options{Service: "menu-order", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()
	zap.ReplaceGlobals(logr)

	// Accept W3C trace context from the frontend; no exporter is configured
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis holds session drafts and cached menus
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logr.Fatal("Redis connection failed", zap.Error(err))
	}
	redisCache := cache.NewRedisCache(redisClient).WithDraftTTL(cfg.SessionTTL)

	// Catalog
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.Mongo())
	if err != nil {
		logr.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Client().Disconnect(disconnectCtx)
	}()
	catalogRepo := repository.NewMongoCatalogRepository(mongoDB)
	if err := catalogRepo.CreateIndexes(ctx); err != nil {
		logr.Fatal("Failed to create catalog indexes", zap.Error(err))
	}
	catalogService := catalog.NewService(catalogRepo, redisCache, logr)
	if cfg.MenuSeed != "" {
		n, errSeed := catalogService.Seed(ctx, cfg.MenuSeed)
		if errSeed != nil {
			logr.Fatal("Failed to seed menus", zap.String("path", cfg.MenuSeed), zap.Error(errSeed))
		}
		logr.Info("Menus seeded", zap.Int("restaurants", n))
	}

	// Orders
	orderRepo, err := repository.NewSQLRepository(cfg.OrderDB())
	if err != nil {
		logr.Fatal("Failed to open order database", zap.String("driver", cfg.OrderDBDriver), zap.Error(err))
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(); err != nil {
		logr.Fatal("Failed to run migrations", zap.Error(err))
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	breakerSettings := circuitbreaker.DefaultSettings("order-store")
	breakerSettings.Ignore = []error{repository.ErrDuplicateOrder}
	breaker := circuitbreaker.New(breakerSettings, logr)

	submitter := checkout.NewSubmitter(orderRepo, publisher, breaker, cfg.WhatsAppHost, logr)
	registry := session.NewRegistry(redisCache, logr)

	router := h.NewRouter(h.RouterConfig{
		Orders:         h.NewOrderHandler(registry, catalogService, submitter, cfg.RequestTimeout, logr),
		History:        h.NewOrdersHandler(orderRepo, cfg.RequestTimeout),
		Menu:           h.NewMenuHandler(catalogService, cfg.RequestTimeout),
		RequestTimeout: cfg.RequestTimeout,
		Health: h.HealthHandler(
			func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			func() map[string]any {
				return map[string]any{
					"sessions":      registry.Len(),
					"order_breaker": breaker.State(),
				}
			}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("menu-order listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		registry.Run(gctx, evictInterval, cfg.SessionIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
	}

	registry.Flush()
	logr.Info("server exited")
}
