package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
)

// Producers feeding ingestion, used as metric labels.
const (
	ProducerEvent    = "event"
	ProducerReceipt  = "receipt"
	ProducerMerchant = "merchant"
)

// Ingestion results, used as metric labels.
const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
	resultUnmatched = "unmatched"
	resultRejected  = "rejected"
)

// IngestionUseCase turns retryable external notifications into at most one
// ledger credit each.
type IngestionUseCase struct {
	ledger       *LedgerUseCase
	tiers        *TierUseCase
	keyRepo      IdempotencyKeyRepository
	merchantRepo MerchantRepository
	codec        TokenCodec
	policy       domain.RewardPolicy
	timeout      time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewIngestionUseCase creates a new IngestionUseCase.
func NewIngestionUseCase(
	ledger *LedgerUseCase,
	tiers *TierUseCase,
	keyRepo IdempotencyKeyRepository,
	merchantRepo MerchantRepository,
	codec TokenCodec,
	policy domain.RewardPolicy,
	timeout time.Duration,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *IngestionUseCase {
	if timeout <= 0 {
		timeout = DefaultIngestTimeout
	}
	return &IngestionUseCase{
		ledger:       ledger,
		tiers:        tiers,
		keyRepo:      keyRepo,
		merchantRepo: merchantRepo,
		codec:        codec,
		policy:       policy,
		timeout:      timeout,
		metrics:      metrics,
		logger:       logger.With().Str("component", "ingestion").Logger(),
	}
}

// IngestInput represents one credit notification for a known account.
type IngestInput struct {
	OccurredAt  time.Time
	ExternalRef string
	AccountID   string
	Category    string
	Amount      int64
}

// IngestResult reports whether the event produced a new entry. Created is
// false when the reference was already bound; Entry is then the original.
type IngestResult struct {
	Entry   *domain.LedgerEntry
	Created bool
}

// ResultingBalance returns the balance recorded by the bound entry.
func (r *IngestResult) ResultingBalance() int64 {
	return r.Entry.BalanceAfter
}

// Ingest credits the account once per external reference.
func (uc *IngestionUseCase) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	return uc.ingest(ctx, ProducerEvent, input)
}

func (uc *IngestionUseCase) ingest(ctx context.Context, producer string, input IngestInput) (*IngestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if err := domain.ValidateExternalRef(input.ExternalRef); err != nil {
		uc.record(producer, resultRejected)
		return nil, err
	}

	if existing, err := uc.keyRepo.GetEntry(ctx, input.ExternalRef); err == nil {
		uc.record(producer, resultDuplicate)
		return &IngestResult{Entry: existing}, nil
	} else if !errors.Is(err, domain.ErrEntryNotFound) {
		return nil, err
	}

	ref := input.ExternalRef
	res, err := uc.ledger.Earn(ctx, EarnInput{
		ExternalRef: &ref,
		AccountID:   input.AccountID,
		Category:    input.Category,
		Reason:      reasonFor(producer, input.OccurredAt),
		Amount:      input.Amount,
	})
	if errors.Is(err, domain.ErrDuplicateExternalRef) {
		// Lost the bind to a concurrent delivery; report the winner.
		existing, lookupErr := uc.keyRepo.GetEntry(ctx, input.ExternalRef)
		if lookupErr != nil {
			return nil, lookupErr
		}
		uc.record(producer, resultDuplicate)
		return &IngestResult{Entry: existing}, nil
	}
	if err != nil {
		uc.record(producer, resultRejected)
		return nil, err
	}

	uc.record(producer, resultCreated)
	uc.logger.Info().
		Str("producer", producer).
		Str("external_ref", input.ExternalRef).
		Str("account_id", input.AccountID).
		Int64("amount", input.Amount).
		Int64("balance_after", res.Entry.BalanceAfter).
		Msg("event ingested")

	return &IngestResult{Entry: res.Entry, Created: true}, nil
}

func reasonFor(producer string, occurredAt time.Time) string {
	if occurredAt.IsZero() {
		return producer
	}
	return producer + " at " + occurredAt.UTC().Format(time.RFC3339)
}

// InboundEvent is a credit notification addressed by identity token.
// Domain selects the credited ledger and defaults to SEED.
type InboundEvent struct {
	OccurredAt  time.Time
	ExternalRef string
	Token       string
	Category    string
	Domain      domain.LedgerDomain
	Amount      int64
}

// IngestEvent resolves the token to the owner's account in the event's
// ledger domain and ingests.
func (uc *IngestionUseCase) IngestEvent(ctx context.Context, event InboundEvent) (*IngestResult, error) {
	if err := domain.ValidateInboundCategory(event.Category); err != nil {
		uc.record(ProducerEvent, resultRejected)
		return nil, err
	}
	if err := domain.ValidateAmount(event.Amount); err != nil {
		uc.record(ProducerEvent, resultRejected)
		return nil, err
	}

	ledger := event.Domain
	if ledger == "" {
		ledger = domain.LedgerDomainSeed
	}
	if !ledger.Valid() {
		uc.record(ProducerEvent, resultRejected)
		return nil, domain.ErrInvalidDomain
	}

	account, err := uc.resolve(ctx, event.Token, ledger)
	if err != nil {
		uc.record(ProducerEvent, resultRejected)
		return nil, err
	}

	return uc.ingest(ctx, ProducerEvent, IngestInput{
		OccurredAt:  event.OccurredAt,
		ExternalRef: event.ExternalRef,
		AccountID:   account.ID,
		Category:    event.Category,
		Amount:      event.Amount,
	})
}

// ReceiptEvent is an electronic receipt issued by a sibling service.
type ReceiptEvent struct {
	OccurredAt      time.Time
	TransactionID   string
	Token           string
	TransactionType string
	BranchName      string
	Amount          int64
}

// ReceiptIssued grants the fixed receipt reward once per receipt.
func (uc *IngestionUseCase) ReceiptIssued(ctx context.Context, event ReceiptEvent) (*IngestResult, error) {
	if event.TransactionID == "" {
		uc.record(ProducerReceipt, resultRejected)
		return nil, domain.ErrMissingReference
	}

	account, err := uc.resolve(ctx, event.Token, domain.LedgerDomainSeed)
	if err != nil {
		uc.record(ProducerReceipt, resultRejected)
		return nil, err
	}

	return uc.ingest(ctx, ProducerReceipt, IngestInput{
		OccurredAt:  event.OccurredAt,
		ExternalRef: "receipt:" + event.TransactionID,
		AccountID:   account.ID,
		Category:    domain.CategoryElectronicReceipt,
		Amount:      uc.policy.ReceiptReward,
	})
}

// CardTransactionEvent is a card purchase reported by the card service.
type CardTransactionEvent struct {
	OccurredAt     time.Time
	TransactionID  string
	Token          string
	BusinessNumber string
	MerchantName   string
	Amount         int64
}

// MatchResult reports the outcome of matching a card transaction.
type MatchResult struct {
	Ingest   *IngestResult
	Merchant *domain.EcoMerchant
	Tier     domain.Tier
	Reward   int64
	Matched  bool
}

// CardTransactionMatched rewards purchases at eco merchants in proportion
// to the amount and the customer's tier at match time. Purchases elsewhere
// are acknowledged without touching the ledger. A transaction that was
// already credited answers with the bound entry, whatever the merchant or
// tier look like now.
func (uc *IngestionUseCase) CardTransactionMatched(ctx context.Context, event CardTransactionEvent) (*MatchResult, error) {
	if event.TransactionID == "" {
		uc.record(ProducerMerchant, resultRejected)
		return nil, domain.ErrMissingReference
	}

	ref := "card:" + event.TransactionID
	if existing, err := uc.keyRepo.GetEntry(ctx, ref); err == nil {
		uc.record(ProducerMerchant, resultDuplicate)
		return &MatchResult{
			Ingest:  &IngestResult{Entry: existing},
			Reward:  existing.Delta,
			Matched: true,
		}, nil
	} else if !errors.Is(err, domain.ErrEntryNotFound) {
		return nil, err
	}

	if err := domain.ValidateAmount(event.Amount); err != nil {
		uc.record(ProducerMerchant, resultRejected)
		return nil, err
	}

	account, err := uc.resolve(ctx, event.Token, domain.LedgerDomainSeed)
	if err != nil {
		uc.record(ProducerMerchant, resultRejected)
		return nil, err
	}

	merchant, err := uc.merchantRepo.GetByBusinessNumber(ctx, event.BusinessNumber)
	if errors.Is(err, domain.ErrMerchantNotFound) || (err == nil && !merchant.Active) {
		uc.record(ProducerMerchant, resultUnmatched)
		return &MatchResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	tier, err := uc.tiers.CurrentTier(ctx, account.OwnerID)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{
		Merchant: merchant,
		Tier:     tier,
		Reward:   uc.policy.MerchantReward(event.Amount, tier),
		Matched:  true,
	}
	if result.Reward <= 0 {
		uc.record(ProducerMerchant, resultUnmatched)
		return result, nil
	}

	result.Ingest, err = uc.ingest(ctx, ProducerMerchant, IngestInput{
		OccurredAt:  event.OccurredAt,
		ExternalRef: ref,
		AccountID:   account.ID,
		Category:    domain.CategoryEcoMerchant,
		Amount:      result.Reward,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *IngestionUseCase) resolve(ctx context.Context, token string, ledger domain.LedgerDomain) (*domain.Account, error) {
	ownerID, err := uc.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	return uc.ledger.GetAccountByOwner(ctx, ownerID, ledger)
}

func (uc *IngestionUseCase) record(producer, result string) {
	if uc.metrics != nil {
		uc.metrics.IngestionEvents.WithLabelValues(producer, result).Inc()
	}
}
