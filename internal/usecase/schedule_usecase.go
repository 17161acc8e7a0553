package usecase

import (
	"context"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

// ScheduleUseCase manages recurring transfer directives. It has no way to
// execute them; only the settlement scheduler does that.
type ScheduleUseCase struct {
	directiveRepo ScheduledTransferRepository
	accountRepo   AccountRepository
	idGen         IDGenerator
}

// NewScheduleUseCase creates a new ScheduleUseCase.
func NewScheduleUseCase(directiveRepo ScheduledTransferRepository, accountRepo AccountRepository, idGen IDGenerator) *ScheduleUseCase {
	return &ScheduleUseCase{
		directiveRepo: directiveRepo,
		accountRepo:   accountRepo,
		idGen:         idGen,
	}
}

// CreateScheduleInput represents input for creating a directive.
type CreateScheduleInput struct {
	Enabled              *bool
	OwnerID              string
	SourceAccountID      string
	DestinationAccountID string
	DayOfMonth           int
	Amount               int64
}

// Create validates and stores a new directive. Directives are enabled
// unless Enabled is explicitly false.
func (uc *ScheduleUseCase) Create(ctx context.Context, input CreateScheduleInput) (*domain.ScheduledTransfer, error) {
	now := time.Now().UTC()

	directive := &domain.ScheduledTransfer{
		ID:                   uc.idGen.Generate(),
		OwnerID:              input.OwnerID,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		DayOfMonth:           input.DayOfMonth,
		Amount:               input.Amount,
		Enabled:              input.Enabled == nil || *input.Enabled,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.validate(ctx, directive); err != nil {
		return nil, err
	}

	if err := uc.directiveRepo.Create(ctx, directive); err != nil {
		return nil, err
	}
	return directive, nil
}

// UpdateScheduleInput represents a partial update; nil fields are unchanged.
type UpdateScheduleInput struct {
	SourceAccountID      *string
	DestinationAccountID *string
	DayOfMonth           *int
	Amount               *int64
	Enabled              *bool
	ID                   string
	OwnerID              string
}

// Update applies the given changes to a directive.
func (uc *ScheduleUseCase) Update(ctx context.Context, input UpdateScheduleInput) (*domain.ScheduledTransfer, error) {
	directive, err := uc.get(ctx, input.ID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if input.SourceAccountID != nil {
		directive.SourceAccountID = *input.SourceAccountID
	}
	if input.DestinationAccountID != nil {
		directive.DestinationAccountID = *input.DestinationAccountID
	}
	if input.DayOfMonth != nil {
		directive.DayOfMonth = *input.DayOfMonth
	}
	if input.Amount != nil {
		directive.Amount = *input.Amount
	}
	if input.Enabled != nil {
		directive.Enabled = *input.Enabled
	}

	if err := uc.validate(ctx, directive); err != nil {
		return nil, err
	}

	directive.UpdatedAt = time.Now().UTC()
	if err := uc.directiveRepo.Update(ctx, directive); err != nil {
		return nil, err
	}
	return directive, nil
}

// Disable stops a directive from being selected by future passes.
func (uc *ScheduleUseCase) Disable(ctx context.Context, id, ownerID string) (*domain.ScheduledTransfer, error) {
	directive, err := uc.get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if !directive.Enabled {
		return directive, nil
	}

	directive.Enabled = false
	directive.UpdatedAt = time.Now().UTC()
	if err := uc.directiveRepo.Update(ctx, directive); err != nil {
		return nil, err
	}
	return directive, nil
}

// Get retrieves a directive by ID.
func (uc *ScheduleUseCase) Get(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	return uc.directiveRepo.GetByID(ctx, id)
}

// ListByAccountInput represents input for listing directives of an account.
type ListByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists directives that move value from or to an account.
func (uc *ScheduleUseCase) ListByAccount(ctx context.Context, input ListByAccountInput) ([]*domain.ScheduledTransfer, error) {
	limit, offset, _ := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.directiveRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

func (uc *ScheduleUseCase) get(ctx context.Context, id, ownerID string) (*domain.ScheduledTransfer, error) {
	directive, err := uc.directiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != "" && directive.OwnerID != ownerID {
		return nil, domain.ErrNotAccountOwner
	}
	return directive, nil
}

func (uc *ScheduleUseCase) validate(ctx context.Context, directive *domain.ScheduledTransfer) error {
	if err := directive.Validate(); err != nil {
		return err
	}

	source, err := uc.accountRepo.GetByID(ctx, directive.SourceAccountID)
	if err != nil {
		return err
	}
	if directive.OwnerID == "" {
		directive.OwnerID = source.OwnerID
	}
	if source.OwnerID != directive.OwnerID {
		return domain.ErrNotAccountOwner
	}
	if source.Status == domain.AccountStatusClosed {
		return domain.ErrAccountClosed
	}

	destination, err := uc.accountRepo.GetByID(ctx, directive.DestinationAccountID)
	if err != nil {
		return err
	}
	if destination.Status == domain.AccountStatusClosed {
		return domain.ErrAccountClosed
	}
	return nil
}
