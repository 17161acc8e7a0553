package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

// ReconciliationUseCase checks that an account's log reproduces its balance.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked     time.Time
	AccountID       string
	Problems        []string
	RecordedBalance int64
	ReplayedBalance int64
	Difference      int64
	EntryCount      int
	IsReconciled    bool
}

// ReconcileAccount replays every entry of the account from zero. It checks
// the final sum against the stored balance and each entry's BalanceAfter
// against the running sum, along with version and timestamp ordering.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListForReplay(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		LastChecked:     time.Now().UTC(),
		AccountID:       accountID,
		RecordedBalance: account.Balance,
		EntryCount:      len(entries),
	}

	var running int64
	var prev *domain.LedgerEntry
	for _, entry := range entries {
		running += entry.Delta
		if entry.BalanceAfter != running {
			result.Problems = append(result.Problems, fmt.Sprintf(
				"entry %s records balance %d, replay gives %d", entry.ID, entry.BalanceAfter, running))
		}
		if running < 0 {
			result.Problems = append(result.Problems, fmt.Sprintf("entry %s drives balance negative", entry.ID))
		}
		if prev != nil {
			if entry.OccurredAt.Before(prev.OccurredAt) {
				result.Problems = append(result.Problems, fmt.Sprintf("entry %s is older than %s", entry.ID, prev.ID))
			}
			if entry.AccountVersion <= prev.AccountVersion {
				result.Problems = append(result.Problems, fmt.Sprintf("entry %s does not advance the account version", entry.ID))
			}
		}
		prev = entry
	}

	result.ReplayedBalance = running
	result.Difference = account.Balance - running
	if result.Difference != 0 {
		result.Problems = append(result.Problems, fmt.Sprintf(
			"stored balance %d differs from replay %d", account.Balance, running))
	}
	result.IsReconciled = len(result.Problems) == 0

	return result, nil
}

// ReconciliationReport represents a reconciliation across several accounts
type ReconciliationReport struct {
	CheckedAt          time.Time
	Discrepancies      []*ReconciliationResult
	TotalAccounts      int
	ReconciledAccounts int
}

// GenerateReconciliationReport reconciles the given accounts.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context, accountIDs []string) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		CheckedAt:     time.Now().UTC(),
		Discrepancies: make([]*ReconciliationResult, 0),
		TotalAccounts: len(accountIDs),
	}

	for _, id := range accountIDs {
		result, err := uc.ReconcileAccount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", id, err)
		}
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
