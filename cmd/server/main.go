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
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/adapter/idgen"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/infrastructure/storage"
	"github.com/iho/gowallet/internal/usecase"
)

const limiterCleanupInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app, err := newApp(cfg, store, reg, log)
	if err != nil {
		return err
	}

	limiterCtx, cancelLimiter := context.WithCancel(ctx)
	defer cancelLimiter()
	go app.limiter.Run(limiterCtx, limiterCleanupInterval)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

type app struct {
	router  http.Handler
	limiter *middleware.RateLimiter
}

// newApp wires use cases, handlers and middleware over an opened store.
func newApp(cfg *config.Config, store *storage.Storage, reg *prometheus.Registry, log zerolog.Logger) (*app, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	m := metrics.NewWithRegisterer(reg)

	// Initialize use cases
	walletUC := usecase.NewWalletUseCase(usecase.Config{
		Repo:     store.Repo,
		Ledger:   domain.NewLedger(policy, idgen.NewULIDGenerator()),
		Clock:    usecase.SystemClock{Location: loc},
		Logger:   &log,
		Recorder: m,
	})
	accountUC := usecase.NewAccountUseCase(walletUC)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	checks := make(map[string]handler.CheckFunc, len(store.Checks))
	for name, check := range store.Checks {
		checks[name] = handler.CheckFunc(check)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RecordRateLimited)

	routerCfg := httpAdapter.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(accountUC, tokens, m),
		WalletHandler:  handler.NewWalletHandler(walletUC, accountUC),
		HealthHandler:  handler.NewHealthHandler(checks),
		Tokens:         tokens,
		Logger:         log,
		RateLimiter:    limiter,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	// Idempotency keys need a shared store
	if store.Redis != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(store.Redis)
		routerCfg.IdempotencyTTL = cfg.IdempotencyTTL
	}

	return &app{router: httpAdapter.NewRouter(routerCfg), limiter: limiter}, nil
}
