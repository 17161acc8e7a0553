package gateway

import (
	"context"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// LedgerQuerier answers tier lookups from the local ledger.
type LedgerQuerier interface {
	QueryLedger(ctx context.Context, token string) (*usecase.LedgerQuery, error)
}

// AccountLister lists the local accounts behind a token.
type AccountLister interface {
	ListByToken(ctx context.Context, token string) ([]*domain.Account, error)
}

// Local serves the Gateway interface from this service's own ledger,
// for the service that owns the seed ledger.
type Local struct {
	service  string
	ledger   LedgerQuerier
	accounts AccountLister
}

// NewLocal creates a Local gateway reporting as service.
func NewLocal(service string, ledger LedgerQuerier, accounts AccountLister) *Local {
	return &Local{
		service:  service,
		ledger:   ledger,
		accounts: accounts,
	}
}

// QueryTier reports the cached tier and current seed balance.
func (l *Local) QueryTier(ctx context.Context, token string) (*usecase.TierSnapshot, error) {
	q, err := l.ledger.QueryLedger(ctx, token)
	if err != nil {
		return nil, err
	}
	return &usecase.TierSnapshot{
		Tier:             q.Status.Tier,
		LifetimeEarned:   q.Status.LifetimeEarned,
		CurrentBalance:   q.Balance,
		AmountToNextTier: q.Status.AmountToNextTier,
		ProgressFraction: q.Status.ProgressFraction,
	}, nil
}

// QueryAccounts summarises the customer's local accounts.
func (l *Local) QueryAccounts(ctx context.Context, token string) ([]usecase.AccountSummary, error) {
	accounts, err := l.accounts.ListByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	summaries := make([]usecase.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, usecase.SummarizeAccount(l.service, a))
	}
	return summaries, nil
}
