package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/metrics"
)

// SettlementUseCase executes due recurring transfers through the ledger.
// It never writes balances itself.
type SettlementUseCase struct {
	directiveRepo ScheduledTransferRepository
	runRepo       SettlementRunRepository
	ledger        *LedgerUseCase
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	directiveRepo ScheduledTransferRepository,
	runRepo SettlementRunRepository,
	ledger *LedgerUseCase,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		directiveRepo: directiveRepo,
		runRepo:       runRepo,
		ledger:        ledger,
		metrics:       metrics,
		logger:        logger.With().Str("component", "settlement").Logger(),
		now:           time.Now,
	}
}

// SettlementOutcome is what happened to one directive in one pass.
type SettlementOutcome struct {
	Err            error
	DirectiveID    string
	Status         domain.RunStatus
	Reason         string
	TransferID     string
	AlreadyHandled bool
}

// SettlementReport summarises one pass.
type SettlementReport struct {
	RunDate        time.Time
	Outcomes       []SettlementOutcome
	Settled        int
	Skipped        int
	Failed         int
	AlreadyHandled int
}

// RunForDate executes every enabled directive whose day of month matches
// date, one after another. Each directive gets at most one attempt per date:
// skipped and failed directives wait for their next trigger date.
func (uc *SettlementUseCase) RunForDate(ctx context.Context, date time.Time) (*SettlementReport, error) {
	start := time.Now()
	runDate := domain.RunDate(date)
	report := &SettlementReport{RunDate: runDate}

	directives, err := uc.directiveRepo.ListDue(ctx, date.Day())
	if err != nil {
		return nil, fmt.Errorf("list due directives: %w", err)
	}

	uc.logger.Info().
		Str("run_date", runDate.Format(time.DateOnly)).
		Int("due", len(directives)).
		Msg("settlement pass started")

	for _, directive := range directives {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !directive.IsDue(date) {
			continue
		}

		outcome := uc.settle(ctx, directive, runDate)
		report.Outcomes = append(report.Outcomes, outcome)

		switch {
		case outcome.AlreadyHandled:
			report.AlreadyHandled++
			continue
		case outcome.Status == domain.RunStatusSettled:
			report.Settled++
		case outcome.Status == domain.RunStatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}

		if uc.metrics != nil {
			uc.metrics.SettlementOutcomes.WithLabelValues(string(outcome.Status)).Inc()
		}
	}

	if uc.metrics != nil {
		uc.metrics.SettlementPassDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Str("run_date", runDate.Format(time.DateOnly)).
		Int("settled", report.Settled).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("already_handled", report.AlreadyHandled).
		Dur("duration", time.Since(start)).
		Msg("settlement pass finished")

	return report, nil
}

func (uc *SettlementUseCase) settle(ctx context.Context, directive *domain.ScheduledTransfer, runDate time.Time) SettlementOutcome {
	log := uc.logger.With().
		Str("directive_id", directive.ID).
		Str("source_account_id", directive.SourceAccountID).
		Str("destination_account_id", directive.DestinationAccountID).
		Int64("amount", directive.Amount).
		Str("run_date", runDate.Format(time.DateOnly)).
		Logger()

	outcome := SettlementOutcome{DirectiveID: directive.ID, Status: domain.RunStatusPending}

	run := &domain.SettlementRun{
		RunDate:     runDate,
		UpdatedAt:   uc.now().UTC(),
		DirectiveID: directive.ID,
		Status:      domain.RunStatusPending,
	}
	claimed, err := uc.runRepo.Claim(ctx, run)
	if err != nil {
		log.Error().Err(err).Msg("could not claim scheduled transfer run")
		outcome.Status = domain.RunStatusFailed
		outcome.Err = err
		return outcome
	}
	if !claimed {
		outcome.AlreadyHandled = true
		return outcome
	}

	reason, err := uc.checkPreconditions(ctx, directive)
	if err != nil {
		// Nothing was attempted, so a later pass on this date may claim again.
		log.Error().Err(err).Msg("scheduled transfer precondition check failed, claim released")
		if relErr := uc.runRepo.Release(ctx, directive.ID, runDate); relErr != nil {
			log.Error().Err(relErr).Msg("could not release scheduled transfer claim")
		}
		outcome.Status = domain.RunStatusFailed
		outcome.Reason = err.Error()
		outcome.Err = err
		return outcome
	}
	if reason != "" {
		log.Warn().Str("reason", reason).Msg("scheduled transfer skipped")
		return uc.finish(ctx, run, outcome, domain.RunStatusSkipped, reason, nil, nil)
	}

	run.Status = domain.RunStatusExecuting
	run.UpdatedAt = uc.now().UTC()
	if err := uc.runRepo.UpdateStatus(ctx, run); err != nil {
		log.Error().Err(err).Msg("could not mark scheduled transfer executing")
	}

	ref := fmt.Sprintf("auto:%s:%s", directive.ID, runDate.Format("20060102"))
	result, err := uc.ledger.Transfer(ctx, TransferInput{
		ExternalRef:   &ref,
		FromAccountID: directive.SourceAccountID,
		ToAccountID:   directive.DestinationAccountID,
		Category:      domain.CategoryAutoTransfer,
		Amount:        directive.Amount,
	})
	if err != nil {
		var transferID *string
		if result != nil {
			transferID = &result.TransferID
		}
		log.Error().
			Err(err).
			Str("class", domain.ClassOf(err).String()).
			Msg("scheduled transfer failed, next attempt on the next trigger date")
		return uc.finish(ctx, run, outcome, domain.RunStatusFailed, err.Error(), transferID, err)
	}

	log.Info().
		Str("transfer_id", result.TransferID).
		Int64("source_balance", result.FromBalance).
		Msg("scheduled transfer settled")
	return uc.finish(ctx, run, outcome, domain.RunStatusSettled, "", &result.TransferID, nil)
}

func (uc *SettlementUseCase) finish(
	ctx context.Context,
	run *domain.SettlementRun,
	outcome SettlementOutcome,
	status domain.RunStatus,
	reason string,
	transferID *string,
	cause error,
) SettlementOutcome {
	run.Status = status
	run.Reason = reason
	run.TransferID = transferID
	run.UpdatedAt = uc.now().UTC()

	if err := uc.runRepo.UpdateStatus(ctx, run); err != nil {
		uc.logger.Error().
			Err(err).
			Str("directive_id", run.DirectiveID).
			Str("status", string(status)).
			Msg("could not record scheduled transfer outcome")
	}

	outcome.Status = status
	outcome.Reason = reason
	outcome.Err = cause
	if transferID != nil {
		outcome.TransferID = *transferID
	}
	return outcome
}

// checkPreconditions returns a skip reason, or an error when the accounts
// could not be read at all.
func (uc *SettlementUseCase) checkPreconditions(ctx context.Context, directive *domain.ScheduledTransfer) (string, error) {
	if directive.Amount <= 0 {
		return domain.SkipReasonInvalidAmount, nil
	}

	source, err := uc.ledger.GetAccount(ctx, directive.SourceAccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.SkipReasonSourceMissing, nil
	}
	if err != nil {
		return "", err
	}
	if !source.IsActive() {
		return domain.SkipReasonSourceInactive, nil
	}

	destination, err := uc.ledger.GetAccount(ctx, directive.DestinationAccountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.SkipReasonDestinationMissing, nil
	}
	if err != nil {
		return "", err
	}
	if !destination.IsActive() {
		return domain.SkipReasonDestinationInactive, nil
	}

	if source.Available < directive.Amount {
		return domain.SkipReasonInsufficientFunds, nil
	}
	return "", nil
}

// ListRuns returns the recorded outcomes for a run date.
func (uc *SettlementUseCase) ListRuns(ctx context.Context, date time.Time) ([]*domain.SettlementRun, error) {
	return uc.runRepo.ListByDate(ctx, domain.RunDate(date))
}
