package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/assetledger/internal/adapter/http"
	"github.com/iho/assetledger/internal/adapter/http/handler"
	"github.com/iho/assetledger/internal/adapter/http/middleware"
	"github.com/iho/assetledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/assetledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/assetledger/internal/adapter/repository/redis"
	"github.com/iho/assetledger/internal/infrastructure/config"
	"github.com/iho/assetledger/internal/infrastructure/eventpublisher"
	"github.com/iho/assetledger/internal/infrastructure/logger"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
	"github.com/iho/assetledger/internal/infrastructure/postgres"
	"github.com/iho/assetledger/internal/infrastructure/redis"
	"github.com/iho/assetledger/internal/infrastructure/repairworker"
	"github.com/iho/assetledger/internal/usecase"
)

const (
	memoryRepairQueueSize = 1024
	limiterCleanupEvery   = 10 * time.Minute
	limiterMaxIdle        = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = l

	if err := run(cfg, l); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, l zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, l, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer app.close()

	go func() {
		if err := app.worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("repair worker stopped")
		}
	}()

	if app.rateLimiter != nil {
		go app.rateLimiter.StartCleanup(ctx, limiterCleanupEvery, limiterMaxIdle)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		l.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageBackend).
			Bool("redis", cfg.RedisURL != "").
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info().Msg("server stopped")
	return nil
}

// app is the wired service.
type app struct {
	handler     http.Handler
	worker      *repairworker.Worker
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is the selected ledger backend.
type storage struct {
	txLog    usecase.TransactionLog
	balances usecase.BalanceStore
	retrier  usecase.Retrier
	checkers []handler.Checker
	close    func()
}

// messaging carries the redis-backed collaborators, or their in-process
// fallbacks when redis is disabled.
type messaging struct {
	idempotency usecase.IdempotencyStore
	publisher   usecase.EventPublisher
	queue       usecase.RepairQueue
	checkers    []handler.Checker
	close       func()
}

func buildApp(ctx context.Context, cfg *config.Config, l zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	store, err := newStorage(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	msg, err := newMessaging(ctx, cfg, l)
	if err != nil {
		store.close()
		return nil, err
	}

	a := &app{closers: []func(){store.close, msg.close}}

	m := metrics.New(reg)
	opts := []usecase.Option{
		usecase.WithLogger(logger.Component(l, "ledger")),
		usecase.WithMetrics(m),
		usecase.WithEventPublisher(msg.publisher),
		usecase.WithRepairQueue(msg.queue),
		usecase.WithRetrier(store.retrier),
	}

	projector := usecase.NewProjector(store.balances, store.retrier)
	ledgerUC := usecase.NewLedgerUseCase(
		usecase.NewRecorder(store.txLog, store.retrier),
		projector,
		postgresRepo.NewULIDGenerator(),
		postgresRepo.NewUUIDGenerator(),
		opts...,
	)
	accountUC := usecase.NewAccountUseCase(store.balances, opts...)
	balanceUC := usecase.NewBalanceUseCase(store.balances, opts...)
	historyUC := usecase.NewHistoryUseCase(store.txLog, opts...)
	reconciliationUC := usecase.NewReconciliationUseCase(store.txLog, store.balances, projector, opts...)

	a.worker = repairworker.New(repairworker.Config{
		Queue:    msg.queue,
		Repairer: reconciliationUC,
		Logger:   l,
		Metrics:  m,
		Interval: cfg.RepairInterval,
	})

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	checkers := append(store.checkers, msg.checkers...)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC, balanceUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		TransactionHandler:    handler.NewTransactionHandler(historyUC, cfg.DefaultAsset),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(checkers...),
		IdempotencyStore:      msg.idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           a.rateLimiter,
		Logger:                logger.Component(l, "http"),
	}
	// A private registry is served on its own; the default one also
	// carries the HTTP middleware metrics.
	if g, ok := reg.(prometheus.Gatherer); ok && reg != prometheus.DefaultRegisterer {
		routerCfg.MetricsHandler = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	if cfg.StorageBackend == config.BackendMemory {
		l.Warn().Msg("using in-memory storage; ledger state is lost on restart")
		store := memory.New()
		return &storage{
			txLog:    store.TransactionLog(),
			balances: store.BalanceStore(),
			close:    func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	l.Info().Msg("connected to postgres")

	return &storage{
		txLog:    postgresRepo.NewTransactionRepository(pool),
		balances: postgresRepo.NewBalanceRepository(pool),
		retrier:  postgresRepo.NewRetrier(logger.Component(l, "retrier")),
		checkers: []handler.Checker{postgres.NewChecker(pool)},
		close:    pool.Close,
	}, nil
}

func newMessaging(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*messaging, error) {
	if cfg.RedisURL == "" {
		l.Warn().Msg("redis disabled; idempotent replay is off and repairs are queued in process")
		return &messaging{
			publisher: eventpublisher.NewLogPublisher(logger.Component(l, "events")),
			queue:     memory.NewRepairQueue(memoryRepairQueueSize),
			close:     func() {},
		}, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	l.Info().Msg("connected to redis")

	return &messaging{
		idempotency: redisRepo.NewIdempotencyStore(client),
		publisher:   redisRepo.NewPublisher(client),
		queue:       redisRepo.NewRepairQueue(client),
		checkers:    []handler.Checker{redis.NewChecker(client)},
		close: func() {
			client.Close()
		},
	}, nil
}
