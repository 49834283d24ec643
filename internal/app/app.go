// Package app wires the checkout service together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/config"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/event"
	handlerhttp "github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/handler/http"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/payment"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/ratelimit"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/repository/postgres"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/internal/service"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/migrations"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/database"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/health"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/httpclient"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/kafka"
)

// expiryInterval is how often stale open sessions are swept.
const expiryInterval = time.Minute

// App owns every long-lived component of the checkout service.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
	svc      *service.Service
	server   *http.Server
}

// New builds the application: connects to Postgres and Redis, runs
// migrations, wires the stores, orchestrator, and HTTP server.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres.Pool(), log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Client())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), log)
	events := event.NewPublisher(producer, cfg.Kafka.Topic, log)

	var limiter service.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(redisClient, ratelimit.Config{
			MaxAttempts:   cfg.RateLimit.MaxAttempts,
			Window:        cfg.RateLimit.Window,
			BlockDuration: cfg.RateLimit.BlockDuration,
		}, log)
	}

	svc := service.NewService(
		postgres.NewCatalogStore(pool),
		postgres.NewPromoStore(pool),
		postgres.NewCreditStore(pool),
		postgres.NewSessionStore(pool),
		newPaymentProvider(cfg.Payment, log),
		events,
		limiter,
		cfg.Checkout,
		log,
	)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	router := handlerhttp.NewRouter(handlerhttp.NewCheckoutHandler(svc, log), healthHandler, log)

	return &App{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		svc:      svc,
		server:   &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// newPaymentProvider selects the configured payment implementation.
func newPaymentProvider(cfg config.PaymentConfig, log *slog.Logger) payment.Provider {
	if cfg.Provider == "mock" {
		return payment.NewMockProvider()
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Timeout
	clientCfg.MaxRetries = cfg.MaxRetries
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("payment-provider"),
		log,
	)
	return payment.NewHostedProvider(client, cfg.BaseURL, cfg.APIKey, log)
}

// Run starts the HTTP server and the session expiry sweep, then blocks until
// the context is canceled. Shutdown order: stop accepting HTTP, flush the
// Kafka producer, then close the data stores.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go a.expiryLoop(sweepCtx)

	select {
	case err := <-errCh:
		cancelSweep()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close failed", slog.String("error", err.Error()))
	}
	a.pool.Close()

	a.logger.Info("shutdown complete")
	return nil
}

// expiryLoop periodically expires stale open sessions.
func (a *App) expiryLoop(ctx context.Context) {
	ticker := time.NewTicker(expiryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.svc.ExpireStaleSessions(ctx); err != nil {
				a.logger.Error("session expiry sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
