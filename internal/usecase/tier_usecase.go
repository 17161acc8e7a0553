package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
)

// TierUseCase owns the cached tier on customer profiles.
type TierUseCase struct {
	profileRepo ProfileRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	codec       TokenCodec
	idGen       IDGenerator
	policy      domain.TierPolicy
	metrics     *metrics.Metrics
}

// NewTierUseCase creates a new TierUseCase.
func NewTierUseCase(
	profileRepo ProfileRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	codec TokenCodec,
	idGen IDGenerator,
	policy domain.TierPolicy,
	metrics *metrics.Metrics,
) *TierUseCase {
	return &TierUseCase{
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		codec:       codec,
		idGen:       idGen,
		policy:      policy,
		metrics:     metrics,
	}
}

// Policy returns the band layout in use.
func (uc *TierUseCase) Policy() domain.TierPolicy {
	return uc.policy
}

// Evaluate maps a lifetime-earned total onto the configured bands.
func (uc *TierUseCase) Evaluate(lifetimeEarned int64) domain.TierStatus {
	return uc.policy.Evaluate(lifetimeEarned)
}

// Recompute refreshes the owner's profile from a seed account that was just
// credited. It runs inside the crediting transaction, so a reader never sees
// the new balance with the old tier.
func (uc *TierUseCase) Recompute(ctx context.Context, tx Transaction, account *domain.Account) error {
	if account.Domain != domain.LedgerDomainSeed {
		return nil
	}

	profile, err := uc.profileRepo.GetForUpdate(ctx, tx, account.OwnerID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = &domain.Profile{OwnerID: account.OwnerID}
	} else if err != nil {
		return err
	}

	previous := profile.Tier
	status := uc.policy.Evaluate(account.LifetimeEarned)
	profile.ApplyStatus(status, account.UpdatedAt)

	if err := uc.profileRepo.Upsert(ctx, tx, profile); err != nil {
		return err
	}

	if previous == "" || previous == status.Tier {
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.TierChanges.WithLabelValues(string(status.Tier)).Inc()
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.OwnerID,
		AggregateType: domain.AggregateTypeProfile,
		EventType:     domain.EventTypeTierChanged,
		Payload: map[string]any{
			"owner_id":        account.OwnerID,
			"previous_tier":   string(previous),
			"current_tier":    string(status.Tier),
			"lifetime_earned": account.LifetimeEarned,
		},
		CreatedAt: account.UpdatedAt,
	})
}

// CurrentTier returns the cached tier for owner. Owners without a profile
// are in the lowest band.
func (uc *TierUseCase) CurrentTier(ctx context.Context, ownerID string) (domain.Tier, error) {
	profile, err := uc.profileRepo.Get(ctx, ownerID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return uc.policy.Evaluate(0).Tier, nil
	}
	if err != nil {
		return "", err
	}
	return profile.Tier, nil
}

// LedgerQuery is the answer to a sibling's tier and balance lookup.
type LedgerQuery struct {
	UpdatedAt time.Time
	OwnerID   string
	AccountID string
	Status    domain.TierStatus
	Balance   int64
}

// QueryLedger resolves token to the owner's seed account and reports its
// cached tier together with the current balance.
func (uc *TierUseCase) QueryLedger(ctx context.Context, token string) (*LedgerQuery, error) {
	ownerID, err := uc.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByOwner(ctx, ownerID, domain.LedgerDomainSeed)
	if err != nil {
		return nil, err
	}

	status := uc.policy.Evaluate(account.LifetimeEarned)
	profile, err := uc.profileRepo.Get(ctx, ownerID)
	switch {
	case err == nil:
		status.Tier = profile.Tier
		status.ProgressFraction = profile.ProgressFraction
		status.AmountToNextTier = profile.AmountToNextTier
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}

	return &LedgerQuery{
		UpdatedAt: account.UpdatedAt,
		OwnerID:   ownerID,
		AccountID: account.ID,
		Status:    status,
		Balance:   account.Balance,
	}, nil
}
