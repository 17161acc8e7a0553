package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

func TestTierUseCase_AdvancesAtBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account := h.enroll(t, "alice", domain.LedgerDomainSeed, 4999)

	tier, err := h.tiers.CurrentTier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.TierBeginner, tier)

	_, err = h.ledger.Earn(ctx, usecase.EarnInput{AccountID: account.ID, Category: domain.CategoryWalking, Amount: 2})
	require.NoError(t, err)

	profile, err := h.repos.Profiles.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.TierIntermediate, profile.Tier)
	assert.Equal(t, int64(5001), profile.LifetimeEarned)
	assert.InDelta(t, 1.0/5000.0, profile.ProgressFraction, 1e-9)
	assert.Equal(t, int64(4999), profile.AmountToNextTier)

	events, err := h.repos.Outbox.GetUnpublished(ctx, 100)
	require.NoError(t, err)
	var changed []*domain.OutboxEvent
	for _, e := range events {
		if e.EventType == domain.EventTypeTierChanged {
			changed = append(changed, e)
		}
	}
	require.Len(t, changed, 1)
	assert.Equal(t, string(domain.TierBeginner), changed[0].Payload["previous_tier"])
	assert.Equal(t, string(domain.TierIntermediate), changed[0].Payload["current_tier"])
}

func TestTierUseCase_SpendDoesNotDemote(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account := h.enroll(t, "bob", domain.LedgerDomainSeed, 6000)

	_, err := h.ledger.Spend(ctx, usecase.SpendInput{AccountID: account.ID, Category: domain.CategoryEnvironmentDonation, Amount: 5000})
	require.NoError(t, err)

	tier, err := h.tiers.CurrentTier(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.TierIntermediate, tier)
	assert.Equal(t, int64(6000), h.account(t, account.ID).LifetimeEarned)
}

func TestTierUseCase_IgnoresOtherDomains(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.enroll(t, "carol", domain.LedgerDomainDeposit, 20000)

	_, err := h.repos.Profiles.Get(ctx, "carol")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	tier, err := h.tiers.CurrentTier(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, domain.TierBeginner, tier)
}

func TestTierUseCase_QueryLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	account := h.enroll(t, "dave", domain.LedgerDomainSeed, 12000)
	_, err := h.ledger.Spend(ctx, usecase.SpendInput{AccountID: account.ID, Category: domain.CategoryEnvironmentDonation, Amount: 2000})
	require.NoError(t, err)

	q, err := h.tiers.QueryLedger(ctx, h.token(t, "dave"))
	require.NoError(t, err)
	assert.Equal(t, account.ID, q.AccountID)
	assert.Equal(t, domain.TierExpert, q.Status.Tier)
	assert.Equal(t, int64(10000), q.Balance)
	assert.Equal(t, int64(12000), q.Status.LifetimeEarned)
	assert.Equal(t, 1.0, q.Status.ProgressFraction)

	_, err = h.tiers.QueryLedger(ctx, "not base64!")
	require.ErrorIs(t, err, domain.ErrMalformedToken)
	_, err = h.tiers.QueryLedger(ctx, h.token(t, "nobody"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
