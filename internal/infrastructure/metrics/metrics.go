package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerDuration   *prometheus.HistogramVec
	LedgerErrors     *prometheus.CounterVec
	LedgerAmount     *prometheus.HistogramVec

	// Transfer metrics
	TransfersCompleted    prometheus.Counter
	TransferCompensations prometheus.Counter
	CompensationFailures  prometheus.Counter

	// Ingestion metrics
	IngestionEvents *prometheus.CounterVec

	// Settlement metrics
	SettlementOutcomes     *prometheus.CounterVec
	SettlementPassDuration prometheus.Histogram

	// Tier metrics
	TierChanges *prometheus.CounterVec

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBRetries prometheus.Counter

	// Rate limiting and idempotency metrics
	RateLimitHits      *prometheus.CounterVec
	IdempotencyReplays prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_ledger_operations_total",
				Help: "Total ledger mutations by entry kind",
			},
			[]string{"kind"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenledger_ledger_operation_duration_seconds",
				Help:    "Duration of ledger mutations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		LedgerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_ledger_errors_total",
				Help: "Rejected or failed ledger mutations by kind and error class",
			},
			[]string{"kind", "class"},
		),
		LedgerAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenledger_ledger_amount",
				Help:    "Mutation amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),

		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenledger_transfers_completed_total",
			Help: "Transfers whose both legs were recorded",
		}),
		TransferCompensations: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenledger_transfer_compensations_total",
			Help: "Transfers reversed by a compensating entry",
		}),
		CompensationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenledger_transfer_compensation_failures_total",
			Help: "Compensating entries that could not be written",
		}),

		IngestionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_ingestion_events_total",
				Help: "Inbound events by producer and result",
			},
			[]string{"producer", "result"},
		),

		SettlementOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_settlement_outcomes_total",
				Help: "Scheduled transfer outcomes by status",
			},
			[]string{"status"},
		),
		SettlementPassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "greenledger_settlement_pass_duration_seconds",
			Help:    "Duration of settlement passes",
			Buckets: prometheus.DefBuckets,
		}),

		TierChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_tier_changes_total",
				Help: "Tier promotions by destination tier",
			},
			[]string{"tier"},
		),

		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_gateway_requests_total",
				Help: "Calls to sibling services",
			},
			[]string{"service", "operation", "status"},
		),
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenledger_gateway_duration_seconds",
				Help:    "Duration of calls to sibling services",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),

		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_outbox_published_total",
				Help: "Outbox events by type and delivery result",
			},
			[]string{"event_type", "result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "greenledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		DBRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenledger_db_retries_total",
			Help: "Transactions retried after a deadlock or serialization failure",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenledger_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenledger_idempotency_replays_total",
			Help: "Responses served from the idempotency store",
		}),
	}
}
