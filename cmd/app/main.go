package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Satakshi24/order-management/internal/cache"
	"github.com/Satakshi24/order-management/internal/config"
	"github.com/Satakshi24/order-management/internal/database"
	"github.com/Satakshi24/order-management/internal/events"
	"github.com/Satakshi24/order-management/internal/httpapi"
	"github.com/Satakshi24/order-management/internal/observability"
	"github.com/Satakshi24/order-management/internal/pkg/breaker"
	"github.com/Satakshi24/order-management/internal/pkg/retry"
	"github.com/Satakshi24/order-management/internal/scheduler"
	"github.com/Satakshi24/order-management/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, cfg.Retry, func() error {
		var cerr error
		pool, cerr = database.Connect(ctx, cfg.DSN())
		return cerr
	}); err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()
	repo := database.New(pool)

	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		rs := cache.NewRedisStore(cfg.Cache.RedisAddr)
		if err := rs.Ping(ctx); err != nil {
			// Requests degrade to store-only until Redis comes back.
			logger.Warn("redis unreachable at startup", zap.Error(err))
		}
		defer rs.Close()
		store = rs
	} else {
		logger.Info("REDIS_ADDR not set, using in-memory cache substrate")
		store = cache.NewMemoryStore()
	}

	brk := breaker.New(cfg.Breaker)
	listings := cache.NewListings(store, brk, cfg.Cache.ListingTTL, logger)

	ordersCache, err := cache.NewOrders(cfg.Cache.OrderCacheCap)
	if err != nil {
		logger.Fatal("order cache init", zap.Error(err))
	}

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.CreatedTopic, cfg.Kafka.ConfirmedTopic, logger)
	defer producer.Close()

	metrics := observability.NewInMem()

	// The scheduler and the service reference each other; the closure defers
	// the service lookup until the first job fires.
	var svc *service.Service
	sched := scheduler.New(cfg.Confirm.Workers, cfg.Confirm.Delay, func(ctx context.Context, orderID int64) error {
		return svc.Confirm(ctx, orderID)
	}, logger)
	svc = service.NewService(repo, listings, ordersCache, sched, producer, logger, metrics)

	sched.Start(ctx)

	server := httpapi.New(svc, logger, metrics)
	logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server", zap.Error(err))
	}

	stop()
	sched.Wait()
	logger.Info("server stopped")
}
