package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
)

// TierRecorder refreshes the cached tier inside the transaction that
// appended an earning entry.
type TierRecorder interface {
	Recompute(ctx context.Context, tx Transaction, account *domain.Account) error
}

// LedgerOption configures a LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// WithCompensationBackOff overrides the retry policy for compensating entries.
func WithCompensationBackOff(newBackOff func() backoff.BackOff) LedgerOption {
	return func(uc *LedgerUseCase) { uc.compensationBackOff = newBackOff }
}

// LedgerUseCase is the only writer of account balances and ledger entries.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	keyRepo     IdempotencyKeyRepository
	outboxRepo  OutboxRepository
	tier        TierRecorder
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	now                 func() time.Time
	compensationBackOff func() backoff.BackOff
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	keyRepo IdempotencyKeyRepository,
	outboxRepo OutboxRepository,
	tier TierRecorder,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txManager:           txManager,
		accountRepo:         accountRepo,
		entryRepo:           entryRepo,
		keyRepo:             keyRepo,
		outboxRepo:          outboxRepo,
		tier:                tier,
		idGen:               idGen,
		retrier:             retrier,
		metrics:             metrics,
		logger:              logger.With().Str("component", "ledger").Logger(),
		now:                 time.Now,
		compensationBackOff: defaultCompensationBackOff,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func defaultCompensationBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithMaxRetries(b, 5)
}

// MutationResult is the committed state after one ledger mutation.
type MutationResult struct {
	Account *domain.Account
	Entry   *domain.LedgerEntry
}

// NewBalance returns the balance recorded on the entry.
func (r *MutationResult) NewBalance() int64 {
	return r.Entry.BalanceAfter
}

// EarnInput represents input for crediting an account.
type EarnInput struct {
	ExternalRef *string
	AccountID   string
	Category    string
	Reason      string
	Amount      int64
}

// SpendInput represents input for debiting an account.
type SpendInput struct {
	AccountID string
	Category  string
	Reason    string
	Amount    int64
}

// ConvertInput represents input for moving value into another service's ledger.
type ConvertInput struct {
	AccountID    string
	TargetSystem string
	Amount       int64
}

// TransferInput represents input for moving value between two accounts.
type TransferInput struct {
	ExternalRef   *string
	FromAccountID string
	ToAccountID   string
	Category      string
	Amount        int64
}

// TransferResult reports balances after a transfer. When Compensated is
// set the destination leg failed and FromBalance already includes the
// compensating credit.
type TransferResult struct {
	OutEntry          *domain.LedgerEntry
	InEntry           *domain.LedgerEntry
	CompensationEntry *domain.LedgerEntry
	TransferID        string
	FromBalance       int64
	ToBalance         int64
	Compensated       bool
}

type mutation struct {
	externalRef     *string
	transferID      *string
	compensates     *string
	events          func(account *domain.Account, entry *domain.LedgerEntry) []*domain.OutboxEvent
	accountID       string
	category        string
	reason          string
	kind            domain.EntryKind
	amount          int64
	countsAsEarning bool
}

func (m mutation) credit() bool {
	return m.kind == domain.EntryKindEarn || m.kind == domain.EntryKindTransferIn
}

// Earn credits an account and, when the account holds seeds, refreshes the
// owner's tier in the same transaction.
func (uc *LedgerUseCase) Earn(ctx context.Context, input EarnInput) (*MutationResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategory(input.Category); err != nil {
		return nil, err
	}
	if input.ExternalRef != nil {
		if err := domain.ValidateExternalRef(*input.ExternalRef); err != nil {
			return nil, err
		}
	}

	return uc.apply(ctx, mutation{
		accountID:       input.AccountID,
		kind:            domain.EntryKindEarn,
		amount:          input.Amount,
		category:        input.Category,
		reason:          input.Reason,
		externalRef:     input.ExternalRef,
		countsAsEarning: true,
	})
}

// Spend debits an account.
func (uc *LedgerUseCase) Spend(ctx context.Context, input SpendInput) (*MutationResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategory(input.Category); err != nil {
		return nil, err
	}

	return uc.apply(ctx, mutation{
		accountID: input.AccountID,
		kind:      domain.EntryKindSpend,
		amount:    input.Amount,
		category:  input.Category,
		reason:    input.Reason,
	})
}

// Convert debits an account and queues a credit request for the target
// system. The result does not wait for the target to apply it.
func (uc *LedgerUseCase) Convert(ctx context.Context, input ConvertInput) (*MutationResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.TargetSystem == "" || len(input.TargetSystem) > domain.MaxCategoryLength {
		return nil, domain.ErrInvalidTarget
	}

	return uc.apply(ctx, mutation{
		accountID: input.AccountID,
		kind:      domain.EntryKindConvert,
		amount:    input.Amount,
		category:  domain.CategoryMoneyConversion,
		reason:    "converted to " + input.TargetSystem,
		events: func(account *domain.Account, entry *domain.LedgerEntry) []*domain.OutboxEvent {
			return []*domain.OutboxEvent{{
				ID:            uc.idGen.Generate(),
				AggregateID:   account.ID,
				AggregateType: domain.AggregateTypeAccount,
				EventType:     domain.EventTypeConversionRequested,
				Payload: map[string]any{
					"entry_id":      entry.ID,
					"account_id":    account.ID,
					"owner_id":      account.OwnerID,
					"target_system": input.TargetSystem,
					"amount":        input.Amount,
					"occurred_at":   entry.OccurredAt.Format(time.RFC3339Nano),
				},
				CreatedAt: entry.OccurredAt,
			}}
		},
	})
}

// Transfer moves amount from one account to another as two independently
// committed legs. If the destination leg fails after the source leg
// committed, a compensating credit is appended to the source and the
// returned error wraps domain.ErrTransferCompensated.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Category:      input.Category,
		ExternalRef:   input.ExternalRef,
		Amount:        input.Amount,
	}
	if transfer.Category == "" {
		transfer.Category = domain.CategoryTransfer
	}
	if err := transfer.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategory(transfer.Category); err != nil {
		return nil, err
	}
	if input.ExternalRef != nil {
		if err := domain.ValidateExternalRef(*input.ExternalRef); err != nil {
			return nil, err
		}
	}

	// Reject obviously dead destinations before touching the source.
	destination, err := uc.accountRepo.GetByID(ctx, transfer.ToAccountID)
	if err != nil {
		return nil, err
	}
	if destination.Status == domain.AccountStatusClosed {
		return nil, domain.ErrAccountClosed
	}

	out, err := uc.apply(ctx, mutation{
		accountID:   transfer.FromAccountID,
		kind:        domain.EntryKindTransferOut,
		amount:      transfer.Amount,
		category:    transfer.Category,
		reason:      "transfer to " + transfer.ToAccountID,
		externalRef: transfer.ExternalRef,
		transferID:  &transfer.ID,
	})
	if err != nil {
		return nil, err
	}

	in, err := uc.apply(ctx, mutation{
		accountID:  transfer.ToAccountID,
		kind:       domain.EntryKindTransferIn,
		amount:     transfer.Amount,
		category:   transfer.Category,
		reason:     "transfer from " + transfer.FromAccountID,
		transferID: &transfer.ID,
	})
	if err != nil {
		return uc.compensate(ctx, transfer, out.Entry, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCompleted.Inc()
	}

	return &TransferResult{
		OutEntry:    out.Entry,
		InEntry:     in.Entry,
		TransferID:  transfer.ID,
		FromBalance: out.Entry.BalanceAfter,
		ToBalance:   in.Entry.BalanceAfter,
	}, nil
}

func (uc *LedgerUseCase) compensate(
	ctx context.Context,
	transfer *domain.Transfer,
	outEntry *domain.LedgerEntry,
	cause error,
) (*TransferResult, error) {
	// The source leg is already committed; a cancelled caller must not
	// leave it unreversed.
	compCtx := context.WithoutCancel(ctx)

	var comp *MutationResult
	operation := func() error {
		res, err := uc.apply(compCtx, mutation{
			accountID:   transfer.FromAccountID,
			kind:        domain.EntryKindEarn,
			amount:      transfer.Amount,
			category:    domain.CategoryTransferCompensation,
			reason:      "reverses " + outEntry.ID,
			transferID:  &transfer.ID,
			compensates: &outEntry.ID,
			events: func(account *domain.Account, entry *domain.LedgerEntry) []*domain.OutboxEvent {
				return []*domain.OutboxEvent{{
					ID:            uc.idGen.Generate(),
					AggregateID:   transfer.ID,
					AggregateType: domain.AggregateTypeTransfer,
					EventType:     domain.EventTypeTransferCompensated,
					Payload: map[string]any{
						"transfer_id":           transfer.ID,
						"from_account_id":       transfer.FromAccountID,
						"to_account_id":         transfer.ToAccountID,
						"compensation_entry_id": entry.ID,
						"amount":                transfer.Amount,
						"cause":                 cause.Error(),
					},
					CreatedAt: entry.OccurredAt,
				}}
			},
		})
		if err != nil {
			switch domain.ClassOf(err) {
			case domain.ClassValidation, domain.ClassPrecondition:
				return backoff.Permanent(err)
			}
			return err
		}
		comp = res
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(uc.compensationBackOff(), compCtx)); err != nil {
		if uc.metrics != nil {
			uc.metrics.CompensationFailures.Inc()
		}
		uc.logger.Error().
			Err(err).
			AnErr("leg_error", cause).
			Str("transfer_id", transfer.ID).
			Str("from_account_id", transfer.FromAccountID).
			Str("to_account_id", transfer.ToAccountID).
			Str("out_entry_id", outEntry.ID).
			Int64("amount", transfer.Amount).
			Msg("transfer compensation failed, source debited without matching credit")
		return nil, fmt.Errorf("%w: transfer %s: %w", domain.ErrCompensationFailed, transfer.ID, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransferCompensations.Inc()
	}
	uc.logger.Warn().
		AnErr("leg_error", cause).
		Str("transfer_id", transfer.ID).
		Str("out_entry_id", outEntry.ID).
		Str("compensation_entry_id", comp.Entry.ID).
		Int64("amount", transfer.Amount).
		Msg("transfer compensated")

	return &TransferResult{
		OutEntry:          outEntry,
		CompensationEntry: comp.Entry,
		TransferID:        transfer.ID,
		FromBalance:       comp.Entry.BalanceAfter,
		Compensated:       true,
	}, fmt.Errorf("%w: %w", domain.ErrTransferCompensated, cause)
}

func (uc *LedgerUseCase) apply(ctx context.Context, m mutation) (*MutationResult, error) {
	start := time.Now()

	var result *MutationResult
	operation := func() error {
		res, err := uc.applyOnce(ctx, m)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}

	if uc.metrics != nil {
		kind := string(m.kind)
		if err != nil {
			uc.metrics.LedgerErrors.WithLabelValues(kind, domain.ClassOf(err).String()).Inc()
		} else {
			uc.metrics.LedgerOperations.WithLabelValues(kind).Inc()
			uc.metrics.LedgerAmount.WithLabelValues(kind).Observe(float64(m.amount))
			uc.metrics.LedgerDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		}
	}

	return result, err
}

func (uc *LedgerUseCase) applyOnce(ctx context.Context, m mutation) (*MutationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, m.accountID)
	if err != nil {
		return nil, err
	}

	if m.credit() {
		err = account.ValidateCredit(m.amount)
	} else {
		err = account.ValidateDebit(m.amount)
	}
	if err != nil {
		return nil, err
	}

	now := account.NextEntryTime(uc.now().UTC())

	delta := m.amount
	var balanceAfter int64
	if m.credit() {
		balanceAfter = account.ApplyCredit(m.amount, m.countsAsEarning, now)
	} else {
		delta = -m.amount
		balanceAfter = account.ApplyDebit(m.amount, now)
	}

	entry := &domain.LedgerEntry{
		ID:                 uc.idGen.Generate(),
		AccountID:          account.ID,
		Kind:               m.kind,
		Category:           m.category,
		Reason:             m.reason,
		ExternalRef:        m.externalRef,
		TransferID:         m.transferID,
		CompensatesEntryID: m.compensates,
		Delta:              delta,
		BalanceAfter:       balanceAfter,
		AccountVersion:     account.Version,
		OccurredAt:         now,
	}

	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if m.externalRef != nil {
		key := &domain.IdempotencyKey{
			ExternalRef: *m.externalRef,
			EntryID:     entry.ID,
			AccountID:   account.ID,
			CreatedAt:   now,
		}
		if err := uc.keyRepo.Bind(txCtx, tx, key); err != nil {
			return nil, err
		}
	}

	if err := uc.accountRepo.Update(txCtx, tx, account); err != nil {
		return nil, err
	}

	if m.countsAsEarning && uc.tier != nil {
		if err := uc.tier.Recompute(txCtx, tx, account); err != nil {
			return nil, fmt.Errorf("recompute tier: %w", err)
		}
	}

	if m.events != nil {
		for _, event := range m.events(account, entry) {
			if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &MutationResult{Account: account, Entry: entry}, nil
}

// GetAccount retrieves an account by ID.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByOwner retrieves the owner's account in the given ledger domain.
func (uc *LedgerUseCase) GetAccountByOwner(ctx context.Context, ownerID string, ledger domain.LedgerDomain) (*domain.Account, error) {
	return uc.accountRepo.GetByOwner(ctx, ownerID, ledger)
}

// ListEntriesInput represents input for listing ledger entries.
type ListEntriesInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntries lists an account's entries, newest first.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// IsCompensated reports whether err is a transfer that was reversed.
func IsCompensated(err error) bool {
	return errors.Is(err, domain.ErrTransferCompensated)
}
