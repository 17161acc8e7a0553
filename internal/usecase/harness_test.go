package usecase_test

import (
	"context"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iho/greenledger/internal/adapter/repository/memory"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/identity"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
	"github.com/iho/greenledger/internal/usecase"
	"github.com/iho/greenledger/internal/usecase/mocks"
)

type harness struct {
	repos      *memory.Repositories
	codec      *identity.Codec
	metrics    *metrics.Metrics
	tiers      *usecase.TierUseCase
	ledger     *usecase.LedgerUseCase
	accounts   *usecase.AccountUseCase
	ingestion  *usecase.IngestionUseCase
	settlement *usecase.SettlementUseCase
	schedules  *usecase.ScheduleUseCase
	reconciler *usecase.ReconciliationUseCase
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	wrapAccounts func(usecase.AccountRepository) usecase.AccountRepository
}

func withAccountRepository(wrap func(usecase.AccountRepository) usecase.AccountRepository) harnessOption {
	return func(c *harnessConfig) { c.wrapAccounts = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	repos := memory.New()
	codec := identity.NewCodec()
	ids := mocks.NewSequentialIDGenerator("id")
	m := metrics.New(prometheus.NewRegistry())
	policy := domain.DefaultRewardPolicy()
	logger := zerolog.Nop()

	var accountRepo usecase.AccountRepository = repos.Accounts
	if cfg.wrapAccounts != nil {
		accountRepo = cfg.wrapAccounts(accountRepo)
	}

	tiers := usecase.NewTierUseCase(repos.Profiles, repos.Accounts, repos.Outbox, codec, ids, policy.Tiers, m)
	ledger := usecase.NewLedgerUseCase(
		repos.TxManager,
		accountRepo,
		repos.Entries,
		repos.Keys,
		repos.Outbox,
		tiers,
		ids,
		nil,
		m,
		logger,
		usecase.WithCompensationBackOff(func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
		}),
	)

	return &harness{
		repos:      repos,
		codec:      codec,
		metrics:    m,
		tiers:      tiers,
		ledger:     ledger,
		accounts:   usecase.NewAccountUseCase(repos.TxManager, repos.Accounts, repos.Profiles, repos.Outbox, codec, ids, policy.Tiers),
		ingestion:  usecase.NewIngestionUseCase(ledger, tiers, repos.Keys, repos.Merchants, codec, policy, 0, m, logger),
		settlement: usecase.NewSettlementUseCase(repos.Directives, repos.Runs, ledger, m, logger),
		schedules:  usecase.NewScheduleUseCase(repos.Directives, repos.Accounts, ids),
		reconciler: usecase.NewReconciliationUseCase(repos.Accounts, repos.Entries),
	}
}

func (h *harness) token(t *testing.T, ownerID string) string {
	t.Helper()
	token, err := h.codec.Encode(ownerID)
	require.NoError(t, err)
	return token
}

// enroll opens an account for ownerID and credits it with balance.
func (h *harness) enroll(t *testing.T, ownerID string, ledger domain.LedgerDomain, balance int64) *domain.Account {
	t.Helper()

	account, err := h.accounts.Enroll(context.Background(), usecase.EnrollInput{
		Token:  h.token(t, ownerID),
		Domain: ledger,
	})
	require.NoError(t, err)

	if balance > 0 {
		_, err := h.ledger.Earn(context.Background(), usecase.EarnInput{
			AccountID: account.ID,
			Category:  "OPENING",
			Amount:    balance,
		})
		require.NoError(t, err)
	}
	return h.account(t, account.ID)
}

func (h *harness) account(t *testing.T, id string) *domain.Account {
	t.Helper()
	account, err := h.ledger.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account
}

func (h *harness) entries(t *testing.T, accountID string) []*domain.LedgerEntry {
	t.Helper()
	entries, err := h.repos.Entries.ListForReplay(context.Background(), accountID)
	require.NoError(t, err)
	return entries
}

func (h *harness) requireReconciled(t *testing.T, accountID string) {
	t.Helper()
	result, err := h.reconciler.ReconcileAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.Truef(t, result.IsReconciled, "account %s: %v", accountID, result.Problems)
}
