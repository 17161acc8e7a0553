package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

// AccountUseCase handles enrollment and account lifecycle.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	profileRepo ProfileRepository
	outboxRepo  OutboxRepository
	codec       TokenCodec
	idGen       IDGenerator
	tiers       domain.TierPolicy
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	profileRepo ProfileRepository,
	outboxRepo OutboxRepository,
	codec TokenCodec,
	idGen IDGenerator,
	tiers domain.TierPolicy,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		outboxRepo:  outboxRepo,
		codec:       codec,
		idGen:       idGen,
		tiers:       tiers,
	}
}

// EnrollInput represents input for enrolling a customer in a ledger domain.
type EnrollInput struct {
	Token  string
	Domain domain.LedgerDomain
}

// Enroll opens an empty ACTIVE account for the customer behind token.
// Seed accounts also get a profile in the lowest tier.
func (uc *AccountUseCase) Enroll(ctx context.Context, input EnrollInput) (*domain.Account, error) {
	if !input.Domain.Valid() {
		return nil, domain.ErrInvalidDomain
	}

	ownerID, err := uc.codec.Decode(input.Token)
	if err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByOwner(ctx, ownerID, input.Domain); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   ownerID,
		Domain:    input.Domain,
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	if input.Domain == domain.LedgerDomainSeed {
		profile := &domain.Profile{OwnerID: ownerID}
		profile.ApplyStatus(uc.tiers.Evaluate(0), now)
		if err := uc.profileRepo.Upsert(txCtx, tx, profile); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountEnrolled,
		Payload: map[string]any{
			"account_id": account.ID,
			"domain":     string(account.Domain),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListByToken lists every account of the customer behind token.
func (uc *AccountUseCase) ListByToken(ctx context.Context, token string) ([]*domain.Account, error) {
	ownerID, err := uc.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.ListByOwner(ctx, ownerID)
}

// Suspend blocks debits on an account.
func (uc *AccountUseCase) Suspend(ctx context.Context, id string) (*domain.Account, error) {
	return uc.transition(ctx, id, domain.AccountStatusSuspended)
}

// Reactivate returns a suspended account to ACTIVE.
func (uc *AccountUseCase) Reactivate(ctx context.Context, id string) (*domain.Account, error) {
	return uc.transition(ctx, id, domain.AccountStatusActive)
}

// Close permanently stops all mutations on an account.
func (uc *AccountUseCase) Close(ctx context.Context, id string) (*domain.Account, error) {
	return uc.transition(ctx, id, domain.AccountStatusClosed)
}

func (uc *AccountUseCase) transition(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := account.TransitionTo(status, account.NextEntryTime(time.Now().UTC())); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}
	return account, nil
}
