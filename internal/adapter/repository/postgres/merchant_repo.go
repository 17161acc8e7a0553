package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/postgres/generated"
)

// MerchantRepository implements usecase.MerchantRepository.
type MerchantRepository struct {
	queries *generated.Queries
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(db generated.DBTX) *MerchantRepository {
	return &MerchantRepository{
		queries: generated.New(db),
	}
}

// GetByBusinessNumber looks up an eco merchant.
func (r *MerchantRepository) GetByBusinessNumber(ctx context.Context, businessNumber string) (*domain.EcoMerchant, error) {
	row, err := r.queries.GetEcoMerchant(ctx, businessNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, wrapErr(err)
	}

	return &domain.EcoMerchant{
		BusinessNumber: row.BusinessNumber,
		Name:           row.Name,
		Category:       row.Category,
		Active:         row.Active,
	}, nil
}

// Put registers or replaces a merchant.
func (r *MerchantRepository) Put(ctx context.Context, merchant domain.EcoMerchant) error {
	return wrapErr(r.queries.UpsertEcoMerchant(ctx, generated.UpsertEcoMerchantParams{
		BusinessNumber: merchant.BusinessNumber,
		Name:           merchant.Name,
		Category:       merchant.Category,
		Active:         merchant.Active,
	}))
}
