package usecase

import (
	"context"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByOwner(ctx context.Context, ownerID string, ledger domain.LedgerDomain) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	// ListForReplay returns every entry of the account in acceptance order.
	ListForReplay(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
}

// IdempotencyKeyRepository binds external references to ledger entries.
type IdempotencyKeyRepository interface {
	// Bind fails with domain.ErrDuplicateExternalRef when the reference is taken.
	Bind(ctx context.Context, tx Transaction, key *domain.IdempotencyKey) error
	// GetEntry returns the entry bound to ref or domain.ErrEntryNotFound.
	GetEntry(ctx context.Context, ref string) (*domain.LedgerEntry, error)
}

// ProfileRepository defines data access for cached customer tiers.
type ProfileRepository interface {
	Get(ctx context.Context, ownerID string) (*domain.Profile, error)
	GetForUpdate(ctx context.Context, tx Transaction, ownerID string) (*domain.Profile, error)
	Upsert(ctx context.Context, tx Transaction, profile *domain.Profile) error
}

// ScheduledTransferRepository defines data access for recurring transfer directives.
type ScheduledTransferRepository interface {
	Create(ctx context.Context, directive *domain.ScheduledTransfer) error
	Update(ctx context.Context, directive *domain.ScheduledTransfer) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error)
	// ListDue returns enabled directives for dayOfMonth in creation order.
	ListDue(ctx context.Context, dayOfMonth int) ([]*domain.ScheduledTransfer, error)
}

// SettlementRunRepository records scheduler decisions per directive and date.
type SettlementRunRepository interface {
	// Claim inserts a PENDING run and reports false if one already exists.
	Claim(ctx context.Context, run *domain.SettlementRun) (bool, error)
	UpdateStatus(ctx context.Context, run *domain.SettlementRun) error
	// Release deletes a run that is still PENDING, leaving any other state.
	Release(ctx context.Context, directiveID string, runDate time.Time) error
	ListByDate(ctx context.Context, runDate time.Time) ([]*domain.SettlementRun, error)
}

// MerchantRepository looks up eco merchants.
type MerchantRepository interface {
	GetByBusinessNumber(ctx context.Context, businessNumber string) (*domain.EcoMerchant, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on a transient store conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error). existingValue is nil while the
	// first request for the key is still in flight.
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so a retry is
	// processed again.
	Release(ctx context.Context, key string) error
}

// TokenCodec converts between raw identities and opaque tokens.
type TokenCodec interface {
	Encode(raw string) (string, error)
	Decode(token string) (string, error)
}

// TierSnapshot is a sibling's view of a customer's tier.
type TierSnapshot struct {
	Tier             domain.Tier `json:"currentTier"`
	LifetimeEarned   int64       `json:"lifetimeEarned"`
	CurrentBalance   int64       `json:"currentBalance"`
	AmountToNextTier int64       `json:"amountToNextTier"`
	ProgressFraction float64     `json:"progressFraction"`
}

// AccountSummary is a sibling's view of one of a customer's accounts.
type AccountSummary struct {
	Service   string              `json:"service"`
	AccountID string              `json:"accountId"`
	Domain    domain.LedgerDomain `json:"domain"`
	Status    string              `json:"status"`
	Product   string              `json:"product,omitempty"`
	Balance   int64               `json:"balance"`
}

// Gateway reaches sibling services. Calls block on the network and must
// never be made while an account row is locked.
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Gateway interface {
	QueryTier(ctx context.Context, token string) (*TierSnapshot, error)
	QueryAccounts(ctx context.Context, token string) ([]AccountSummary, error)
}
