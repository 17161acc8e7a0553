package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/postgres/generated"
)

// ScheduledTransferRepository implements usecase.ScheduledTransferRepository.
type ScheduledTransferRepository struct {
	queries *generated.Queries
}

// NewScheduledTransferRepository creates a new ScheduledTransferRepository.
func NewScheduledTransferRepository(db generated.DBTX) *ScheduledTransferRepository {
	return &ScheduledTransferRepository{
		queries: generated.New(db),
	}
}

// Create inserts a directive.
func (r *ScheduledTransferRepository) Create(ctx context.Context, directive *domain.ScheduledTransfer) error {
	return wrapErr(r.queries.CreateScheduledTransfer(ctx, generated.CreateScheduledTransferParams{
		ID:                   directive.ID,
		OwnerID:              directive.OwnerID,
		SourceAccountID:      directive.SourceAccountID,
		DestinationAccountID: directive.DestinationAccountID,
		DayOfMonth:           int32(directive.DayOfMonth),
		Amount:               directive.Amount,
		Enabled:              directive.Enabled,
		CreatedAt:            timeToPgTimestamptz(directive.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(directive.UpdatedAt),
	}))
}

// Update replaces a directive's mutable fields.
func (r *ScheduledTransferRepository) Update(ctx context.Context, directive *domain.ScheduledTransfer) error {
	n, err := r.queries.UpdateScheduledTransfer(ctx, generated.UpdateScheduledTransferParams{
		ID:                   directive.ID,
		SourceAccountID:      directive.SourceAccountID,
		DestinationAccountID: directive.DestinationAccountID,
		DayOfMonth:           int32(directive.DayOfMonth),
		Amount:               directive.Amount,
		Enabled:              directive.Enabled,
		UpdatedAt:            timeToPgTimestamptz(directive.UpdatedAt),
	})
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return domain.ErrScheduledTransferNotFound
	}
	return nil
}

// GetByID retrieves a directive by ID.
func (r *ScheduledTransferRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	row, err := r.queries.GetScheduledTransfer(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduledTransferNotFound
		}
		return nil, wrapErr(err)
	}
	return rowToScheduledTransfer(row), nil
}

// ListByAccount lists directives that move value from or to accountID.
func (r *ScheduledTransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ScheduledTransfer, error) {
	rows, err := r.queries.ListScheduledTransfersByAccount(ctx, generated.ListScheduledTransfersByAccountParams{
		SourceAccountID: accountID,
		Limit:           int32(limit),
		Offset:          int32(offset),
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return rowsToScheduledTransfers(rows), nil
}

// ListDue returns enabled directives for dayOfMonth in creation order.
func (r *ScheduledTransferRepository) ListDue(ctx context.Context, dayOfMonth int) ([]*domain.ScheduledTransfer, error) {
	rows, err := r.queries.ListDueScheduledTransfers(ctx, int32(dayOfMonth))
	if err != nil {
		return nil, wrapErr(err)
	}
	return rowsToScheduledTransfers(rows), nil
}

func rowsToScheduledTransfers(rows []generated.ScheduledTransfer) []*domain.ScheduledTransfer {
	out := make([]*domain.ScheduledTransfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToScheduledTransfer(row))
	}
	return out
}

func rowToScheduledTransfer(row generated.ScheduledTransfer) *domain.ScheduledTransfer {
	return &domain.ScheduledTransfer{
		ID:                   row.ID,
		OwnerID:              row.OwnerID,
		SourceAccountID:      row.SourceAccountID,
		DestinationAccountID: row.DestinationAccountID,
		DayOfMonth:           int(row.DayOfMonth),
		Amount:               row.Amount,
		Enabled:              row.Enabled,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}

// SettlementRunRepository implements usecase.SettlementRunRepository.
type SettlementRunRepository struct {
	queries *generated.Queries
}

// NewSettlementRunRepository creates a new SettlementRunRepository.
func NewSettlementRunRepository(db generated.DBTX) *SettlementRunRepository {
	return &SettlementRunRepository{
		queries: generated.New(db),
	}
}

// Claim inserts a run for (directive, date) and reports false when another
// pass already holds it.
func (r *SettlementRunRepository) Claim(ctx context.Context, run *domain.SettlementRun) (bool, error) {
	n, err := r.queries.ClaimSettlementRun(ctx, generated.ClaimSettlementRunParams{
		DirectiveID: run.DirectiveID,
		RunDate:     timeToPgDate(run.RunDate),
		Status:      string(run.Status),
		Reason:      run.Reason,
		TransferID:  ptrToPgText(run.TransferID),
		UpdatedAt:   timeToPgTimestamptz(run.UpdatedAt),
	})
	if err != nil {
		return false, wrapErr(err)
	}
	return n == 1, nil
}

// UpdateStatus records the run's latest state.
func (r *SettlementRunRepository) UpdateStatus(ctx context.Context, run *domain.SettlementRun) error {
	n, err := r.queries.UpdateSettlementRun(ctx, generated.UpdateSettlementRunParams{
		DirectiveID: run.DirectiveID,
		RunDate:     timeToPgDate(run.RunDate),
		Status:      string(run.Status),
		Reason:      run.Reason,
		TransferID:  ptrToPgText(run.TransferID),
		UpdatedAt:   timeToPgTimestamptz(run.UpdatedAt),
	})
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return domain.ErrScheduledTransferNotFound
	}
	return nil
}

// Release drops a claim that is still PENDING so a later pass on the same
// date can claim it again.
func (r *SettlementRunRepository) Release(ctx context.Context, directiveID string, runDate time.Time) error {
	_, err := r.queries.ReleaseSettlementRun(ctx, generated.ReleaseSettlementRunParams{
		DirectiveID: directiveID,
		RunDate:     timeToPgDate(runDate),
	})
	return wrapErr(err)
}

// ListByDate lists the runs recorded for a date.
func (r *SettlementRunRepository) ListByDate(ctx context.Context, runDate time.Time) ([]*domain.SettlementRun, error) {
	rows, err := r.queries.ListSettlementRunsByDate(ctx, timeToPgDate(runDate))
	if err != nil {
		return nil, wrapErr(err)
	}

	runs := make([]*domain.SettlementRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, &domain.SettlementRun{
			DirectiveID: row.DirectiveID,
			RunDate:     domain.RunDate(row.RunDate.Time),
			Status:      domain.RunStatus(row.Status),
			Reason:      row.Reason,
			TransferID:  pgTextToPtr(row.TransferID),
			UpdatedAt:   row.UpdatedAt.Time,
		})
	}
	return runs, nil
}
