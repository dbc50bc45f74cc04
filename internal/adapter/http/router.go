package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	WalletHandler *handler.WalletHandler
	HealthHandler *handler.HealthHandler
	Tokens        middleware.TokenVerifier
	Logger        zerolog.Logger

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)

		r.Route("/wallet", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.Tokens))

			// Idempotency keys are scoped to the authenticated wallet
			if cfg.IdempotencyStore != nil {
				idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
				r.Use(idempotency.Wrap)
			}

			r.Get("/", cfg.WalletHandler.Get)
			r.Get("/history", cfg.WalletHandler.History)
			r.Get("/loan-options", cfg.WalletHandler.LoanOptions)
			r.Post("/deposit", cfg.WalletHandler.Deposit)
			r.Post("/withdraw", cfg.WalletHandler.Withdraw)
			r.Post("/transfer", cfg.WalletHandler.Transfer)
			r.Post("/loan", cfg.WalletHandler.Loan)
			r.Post("/repay", cfg.WalletHandler.Repay)
			r.Post("/interest", cfg.WalletHandler.Interest)
			r.Patch("/profile", cfg.WalletHandler.UpdateProfile)
			r.Put("/password", cfg.WalletHandler.ChangePassword)
		})
	})

	return r
}
