package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountSummaryTTL is how long sibling account summaries are cached
	AccountSummaryTTL = 30 * time.Second

	// DefaultIngestTimeout bounds a single inbound event.
	DefaultIngestTimeout = 5 * time.Second
)
