package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/adapter/http/handler"
	"github.com/iho/greenledger/internal/adapter/http/middleware"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
	"github.com/iho/greenledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	TransferHandler  *handler.TransferHandler
	ScheduleHandler  *handler.ScheduleHandler
	BenefitHandler   *handler.BenefitHandler
	IngestionHandler *handler.IngestionHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler

	// ServiceVerifier guards /internal/v1. Internal routes are not mounted
	// without one.
	ServiceVerifier  middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
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
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Service-to-service surface used by sibling services
	if cfg.ServiceVerifier != nil {
		r.Route("/internal/v1", func(r chi.Router) {
			r.Use(middleware.ServiceAuth(cfg.ServiceVerifier))

			r.Post("/events", cfg.IngestionHandler.Event)
			r.Post("/webhooks/receipts", cfg.IngestionHandler.Receipt)
			r.Post("/webhooks/card-transactions", cfg.IngestionHandler.CardTransaction)
			r.Post("/ledger/query", cfg.LedgerHandler.Query)
			r.Get("/accounts", cfg.LedgerHandler.Accounts)
		})
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.Metrics, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Enroll)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.AccountHandler.Entries)
			r.Get("/{id}/verify", cfg.AccountHandler.Verify)
			r.Post("/{id}/suspend", cfg.AccountHandler.Suspend)
			r.Post("/{id}/reactivate", cfg.AccountHandler.Reactivate)
			r.Post("/{id}/close", cfg.AccountHandler.Close)
			r.Post("/{id}/earn", cfg.AccountHandler.Earn)
			r.Post("/{id}/spend", cfg.AccountHandler.Spend)
			r.Post("/{id}/convert", cfg.AccountHandler.Convert)
		})

		// Transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Recurring transfers
		r.Route("/scheduled-transfers", func(r chi.Router) {
			r.Post("/", cfg.ScheduleHandler.Create)
			r.Get("/", cfg.ScheduleHandler.List)
			r.Get("/{id}", cfg.ScheduleHandler.Get)
			r.Put("/{id}", cfg.ScheduleHandler.Update)
			r.Post("/{id}/disable", cfg.ScheduleHandler.Disable)
		})

		r.Get("/benefits", cfg.BenefitHandler.Calculate)
		r.Get("/settlement-runs", cfg.BenefitHandler.SettlementRuns)
	})

	return r
}
