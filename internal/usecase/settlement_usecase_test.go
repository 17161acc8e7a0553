package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
	"github.com/iho/greenledger/internal/usecase/mocks"
)

var settlementDay = time.Date(2026, 3, 25, 6, 0, 0, 0, time.UTC)

func (h *harness) schedule(t *testing.T, from, to *domain.Account, amount int64) *domain.ScheduledTransfer {
	t.Helper()
	directive, err := h.schedules.Create(context.Background(), usecase.CreateScheduleInput{
		OwnerID:              from.OwnerID,
		SourceAccountID:      from.ID,
		DestinationAccountID: to.ID,
		DayOfMonth:           settlementDay.Day(),
		Amount:               amount,
	})
	require.NoError(t, err)
	return directive
}

func TestSettlementUseCase_SettlesDueDirective(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	x := h.enroll(t, "xavier", domain.LedgerDomainDeposit, 10000)
	y := h.enroll(t, "xavier", domain.LedgerDomainMoney, 0)
	directive := h.schedule(t, x, y, 10000)

	report, err := h.settlement.RunForDate(ctx, settlementDay)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Settled)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.RunStatusSettled, report.Outcomes[0].Status)
	assert.NotEmpty(t, report.Outcomes[0].TransferID)

	assert.Equal(t, int64(0), h.account(t, x.ID).Balance)
	assert.Equal(t, int64(10000), h.account(t, y.ID).Balance)

	stored, err := h.schedules.Get(ctx, directive.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
	assert.Equal(t, directive.Amount, stored.Amount)

	out := h.entries(t, x.ID)
	last := out[len(out)-1]
	require.NotNil(t, last.ExternalRef)
	assert.Equal(t, "auto:"+directive.ID+":20260325", *last.ExternalRef)
	assert.Equal(t, domain.CategoryAutoTransfer, last.Category)

	runs, err := h.settlement.ListRuns(ctx, settlementDay)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusSettled, runs[0].Status)
}

func TestSettlementUseCase_RunsOncePerDate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	x := h.enroll(t, "yara", domain.LedgerDomainDeposit, 500)
	y := h.enroll(t, "yara", domain.LedgerDomainMoney, 0)
	h.schedule(t, x, y, 100)

	_, err := h.settlement.RunForDate(ctx, settlementDay)
	require.NoError(t, err)

	again, err := h.settlement.RunForDate(ctx, settlementDay.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.AlreadyHandled)
	assert.Zero(t, again.Settled)

	assert.Equal(t, int64(400), h.account(t, x.ID).Balance)

	next, err := h.settlement.RunForDate(ctx, settlementDay.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, next.Settled)
	assert.Equal(t, int64(300), h.account(t, x.ID).Balance)
}

func TestSettlementUseCase_Skips(t *testing.T) {
	tests := []struct {
		name       string
		balance    int64
		amount     int64
		prepare    func(t *testing.T, h *harness, x, y *domain.Account)
		wantReason string
	}{
		{
			name:       "insufficient funds",
			balance:    50,
			amount:     100,
			wantReason: domain.SkipReasonInsufficientFunds,
		},
		{
			name:    "source suspended",
			balance: 500,
			amount:  100,
			prepare: func(t *testing.T, h *harness, x, _ *domain.Account) {
				_, err := h.accounts.Suspend(context.Background(), x.ID)
				require.NoError(t, err)
			},
			wantReason: domain.SkipReasonSourceInactive,
		},
		{
			name:    "destination closed",
			balance: 500,
			amount:  100,
			prepare: func(t *testing.T, h *harness, _, y *domain.Account) {
				_, err := h.accounts.Close(context.Background(), y.ID)
				require.NoError(t, err)
			},
			wantReason: domain.SkipReasonDestinationInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			x := h.enroll(t, "zane", domain.LedgerDomainDeposit, tt.balance)
			y := h.enroll(t, "zane", domain.LedgerDomainMoney, 0)
			directive := h.schedule(t, x, y, tt.amount)
			if tt.prepare != nil {
				tt.prepare(t, h, x, y)
			}

			report, err := h.settlement.RunForDate(ctx, settlementDay)
			require.NoError(t, err)

			assert.Equal(t, 1, report.Skipped)
			require.Len(t, report.Outcomes, 1)
			assert.Equal(t, domain.RunStatusSkipped, report.Outcomes[0].Status)
			assert.Equal(t, tt.wantReason, report.Outcomes[0].Reason)

			assert.Equal(t, tt.balance, h.account(t, x.ID).Balance)
			stored, err := h.schedules.Get(ctx, directive.ID)
			require.NoError(t, err)
			assert.True(t, stored.Enabled)
		})
	}
}

func TestSettlementUseCase_IgnoresDisabledAndOtherDays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	x := h.enroll(t, "amy", domain.LedgerDomainDeposit, 500)
	y := h.enroll(t, "amy", domain.LedgerDomainMoney, 0)

	disabled := h.schedule(t, x, y, 100)
	_, err := h.schedules.Disable(ctx, disabled.ID, x.OwnerID)
	require.NoError(t, err)

	_, err = h.schedules.Create(ctx, usecase.CreateScheduleInput{
		OwnerID:              x.OwnerID,
		SourceAccountID:      x.ID,
		DestinationAccountID: y.ID,
		DayOfMonth:           1,
		Amount:               100,
	})
	require.NoError(t, err)

	report, err := h.settlement.RunForDate(ctx, settlementDay)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, int64(500), h.account(t, x.ID).Balance)
}

func TestSettlementUseCase_ThirtyFirstSkipsShortMonths(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	x := h.enroll(t, "ben", domain.LedgerDomainDeposit, 500)
	y := h.enroll(t, "ben", domain.LedgerDomainMoney, 0)
	_, err := h.schedules.Create(ctx, usecase.CreateScheduleInput{
		OwnerID:              x.OwnerID,
		SourceAccountID:      x.ID,
		DestinationAccountID: y.ID,
		DayOfMonth:           31,
		Amount:               100,
	})
	require.NoError(t, err)

	for day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); day.Month() == time.April; day = day.AddDate(0, 0, 1) {
		report, err := h.settlement.RunForDate(ctx, day)
		require.NoError(t, err)
		assert.Empty(t, report.Outcomes)
	}
	assert.Equal(t, int64(500), h.account(t, x.ID).Balance)
}

func TestSettlementUseCase_ReadFailureLeavesDateOpen(t *testing.T) {
	failReads := false
	h := newHarness(t, withAccountRepository(func(repo usecase.AccountRepository) usecase.AccountRepository {
		return &mocks.AccountRepositoryStub{
			AccountRepository: repo,
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Account, error) {
				if failReads {
					return nil, fmt.Errorf("read account %s: %w", id, domain.ErrBackendUnavailable)
				}
				return repo.GetByID(ctx, id)
			},
		}
	}))
	ctx := context.Background()
	x := h.enroll(t, "cleo", domain.LedgerDomainDeposit, 10000)
	y := h.enroll(t, "cleo", domain.LedgerDomainMoney, 0)
	h.schedule(t, x, y, 10000)

	failReads = true
	report, err := h.settlement.RunForDate(ctx, settlementDay)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	require.ErrorIs(t, report.Outcomes[0].Err, domain.ErrBackendUnavailable)

	runs, err := h.settlement.ListRuns(ctx, settlementDay)
	require.NoError(t, err)
	assert.Empty(t, runs, "claim must be released when no transfer was attempted")

	failReads = false
	again, err := h.settlement.RunForDate(ctx, settlementDay.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Settled)
	assert.Zero(t, again.AlreadyHandled)

	assert.Equal(t, int64(0), h.account(t, x.ID).Balance)
	assert.Equal(t, int64(10000), h.account(t, y.ID).Balance)
}

func TestSettlementUseCase_TransferFailureIsRecordedOnce(t *testing.T) {
	var toID string
	h := newHarness(t, withAccountRepository(func(repo usecase.AccountRepository) usecase.AccountRepository {
		return &mocks.AccountRepositoryStub{
			AccountRepository: repo,
			GetByIDForUpdateFunc: func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
				if id == toID {
					return nil, domain.ErrBackendUnavailable
				}
				return repo.GetByIDForUpdate(ctx, tx, id)
			},
		}
	}))
	ctx := context.Background()
	x := h.enroll(t, "dara", domain.LedgerDomainDeposit, 500)
	y := h.enroll(t, "dara", domain.LedgerDomainMoney, 0)
	toID = y.ID
	directive := h.schedule(t, x, y, 200)

	report, err := h.settlement.RunForDate(ctx, settlementDay)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Zero(t, report.Settled)
	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	assert.Equal(t, domain.RunStatusFailed, outcome.Status)
	require.ErrorIs(t, outcome.Err, domain.ErrTransferCompensated)
	assert.NotEmpty(t, outcome.Reason)

	runs, err := h.settlement.ListRuns(ctx, settlementDay)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].TransferID)

	stored, err := h.schedules.Get(ctx, directive.ID)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)

	outs := 0
	for _, e := range h.entries(t, x.ID) {
		if e.Kind == domain.EntryKindTransferOut {
			outs++
		}
	}
	assert.Equal(t, 1, outs, "one attempt per pass")
	assert.Equal(t, int64(500), h.account(t, x.ID).Balance)
	assert.Equal(t, int64(0), h.account(t, y.ID).Balance)

	again, err := h.settlement.RunForDate(ctx, settlementDay.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, again.AlreadyHandled)
	assert.Zero(t, again.Failed)
	assert.Len(t, h.entries(t, x.ID), 3)
	h.requireReconciled(t, x.ID)
}
