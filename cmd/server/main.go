package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/adapter/gateway"
	httpAdapter "github.com/iho/greenledger/internal/adapter/http"
	"github.com/iho/greenledger/internal/adapter/http/handler"
	"github.com/iho/greenledger/internal/adapter/http/middleware"
	"github.com/iho/greenledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/greenledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/greenledger/internal/adapter/repository/redis"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/identity"
	"github.com/iho/greenledger/internal/infrastructure/auth"
	"github.com/iho/greenledger/internal/infrastructure/config"
	"github.com/iho/greenledger/internal/infrastructure/eventpublisher"
	"github.com/iho/greenledger/internal/infrastructure/logger"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
	"github.com/iho/greenledger/internal/infrastructure/policy"
	"github.com/iho/greenledger/internal/infrastructure/postgres"
	"github.com/iho/greenledger/internal/infrastructure/redis"
	"github.com/iho/greenledger/internal/infrastructure/scheduler"
	"github.com/iho/greenledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// stores is the persistence layer selected by STORE_DRIVER.
type stores struct {
	txManager  usecase.TransactionManager
	accounts   usecase.AccountRepository
	entries    usecase.EntryRepository
	keys       usecase.IdempotencyKeyRepository
	profiles   usecase.ProfileRepository
	directives usecase.ScheduledTransferRepository
	runs       usecase.SettlementRunRepository
	merchants  usecase.MerchantRepository
	outbox     usecase.OutboxRepository
	retrier    usecase.Retrier
	pinger     handler.Pinger
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store, balances are lost on restart")
		repos := memory.New()
		return &stores{
			txManager:  repos.TxManager,
			accounts:   repos.Accounts,
			entries:    repos.Entries,
			keys:       repos.Keys,
			profiles:   repos.Profiles,
			directives: repos.Directives,
			runs:       repos.Runs,
			merchants:  repos.Merchants,
			outbox:     repos.Outbox,
			close:      func() {},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:      cfg.DatabaseURL,
		MaxConns:         cfg.DatabaseMaxConns,
		MinConns:         cfg.DatabaseMinConns,
		ConnectTimeout:   cfg.DatabaseTimeout,
		StatementTimeout: usecase.DefaultTransactionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &stores{
		txManager:  postgresRepo.NewTxManager(pool),
		accounts:   postgresRepo.NewAccountRepository(pool),
		entries:    postgresRepo.NewEntryRepository(pool),
		keys:       postgresRepo.NewIdempotencyKeyRepository(pool),
		profiles:   postgresRepo.NewProfileRepository(pool),
		directives: postgresRepo.NewScheduledTransferRepository(pool),
		runs:       postgresRepo.NewSettlementRunRepository(pool),
		merchants:  postgresRepo.NewMerchantRepository(pool),
		outbox:     postgresRepo.NewOutboxRepository(pool),
		retrier:    postgresRepo.NewRetrier(m, log),
		pinger:     pool,
		close:      pool.Close,
	}, nil
}

// app is the wired service: the HTTP surface plus its background workers.
type app struct {
	router      http.Handler
	publisher   *eventpublisher.EventPublisher
	scheduler   *scheduler.Runner
	rateLimiter *middleware.RateLimiter
}

func newApp(
	cfg *config.Config,
	st *stores,
	redisClient *goredis.Client,
	rewards domain.RewardPolicy,
	m *metrics.Metrics,
	metricsHandler http.Handler,
	log zerolog.Logger,
) *app {
	codec := identity.NewCodec()
	ids := postgresRepo.NewULIDGenerator()

	var (
		idempotencyStore usecase.IdempotencyStore
		cache            usecase.Cache
		lock             scheduler.Locker
		redisPinger      handler.Pinger
	)
	if redisClient != nil {
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		cache = redisRepo.NewCache(redisClient)
		lock = redisRepo.NewLock(redisClient, "settlement")
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// Use cases
	tierUC := usecase.NewTierUseCase(st.profiles, st.accounts, st.outbox, codec, ids, rewards.Tiers, m)
	ledgerUC := usecase.NewLedgerUseCase(
		st.txManager,
		st.accounts,
		st.entries,
		st.keys,
		st.outbox,
		tierUC,
		ids,
		st.retrier,
		m,
		log,
	)
	accountUC := usecase.NewAccountUseCase(st.txManager, st.accounts, st.profiles, st.outbox, codec, ids, rewards.Tiers)
	ingestionUC := usecase.NewIngestionUseCase(ledgerUC, tierUC, st.keys, st.merchants, codec, rewards, cfg.IngestTimeout, m, log)
	settlementUC := usecase.NewSettlementUseCase(st.directives, st.runs, ledgerUC, m, log)
	scheduleUC := usecase.NewScheduleUseCase(st.directives, st.accounts, ids)
	reconUC := usecase.NewReconciliationUseCase(st.accounts, st.entries)

	// Sibling services answer first; the local ledger is the last resort.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.ServiceName, cfg.JWTExpiration)
	var (
		gateways = make([]usecase.Gateway, 0, len(cfg.Siblings())+1)
		targets  = make(map[string]gateway.EventDeliverer)
	)
	for _, sibling := range cfg.Siblings() {
		client := gateway.NewClient(gateway.ClientConfig{
			Name:    sibling.Name,
			BaseURL: sibling.BaseURL,
			Timeout: cfg.GatewayTimeout,
			Signer:  jwtManager,
			Metrics: m,
			Logger:  log,
		})
		gateways = append(gateways, client)
		targets[sibling.Name] = client
	}
	gateways = append(gateways, gateway.NewLocal(cfg.ServiceName, tierUC, accountUC))
	benefitUC := usecase.NewBenefitUseCase(gateway.NewFallback(log, gateways...), cache, rewards, log)

	// Handlers
	var verifier middleware.TokenVerifier
	if cfg.JWTSecret != "" {
		verifier = jwtManager
	} else {
		log.Warn().Msg("JWT_SECRET is empty, internal routes are disabled")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, ledgerUC, reconUC),
		TransferHandler:  handler.NewTransferHandler(ledgerUC),
		ScheduleHandler:  handler.NewScheduleHandler(scheduleUC, codec),
		BenefitHandler:   handler.NewBenefitHandler(benefitUC, settlementUC),
		IngestionHandler: handler.NewIngestionHandler(ingestionUC),
		LedgerHandler:    handler.NewLedgerHandler(tierUC, accountUC, cfg.ServiceName),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": st.pinger,
			"redis":    redisPinger,
		}),
		ServiceVerifier:  verifier,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   metricsHandler,
		Logger:           log,
	})

	return &app{
		router: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: st.outbox,
			Publisher:  gateway.NewDispatcher(targets, codec, log),
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}),
		scheduler: scheduler.NewRunner(scheduler.Config{
			Settler:  settlementUC,
			Locker:   lock,
			Logger:   log,
			Location: cfg.Location(),
			Interval: cfg.SchedulerInterval,
		}),
		rateLimiter: rateLimiter,
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rewards, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := metrics.New(registry)

	st, err := openStores(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClientWithOptions(ctx, cfg.RedisURL, redis.Options{
			DialTimeout:  cfg.GatewayTimeout,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL is empty, running without idempotency store and scheduler lock")
	}

	a := newApp(cfg, st, redisClient, rewards, m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), log)

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() { _ = a.publisher.Start(workers) }()
	if cfg.SchedulerEnabled {
		go func() { _ = a.scheduler.Start(workers) }()
	}
	go sweepLimiters(workers, a.rateLimiter, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// sweepLimiters drops per-client rate limiters nobody has used for a while.
func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.CleanupLimiters(10 * time.Minute); removed > 0 {
				log.Debug().Int("removed", removed).Msg("idle rate limiters dropped")
			}
		}
	}
}
