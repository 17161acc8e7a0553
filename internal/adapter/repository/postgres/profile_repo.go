package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/postgres/generated"
	"github.com/iho/greenledger/internal/usecase"
)

// ProfileRepository implements usecase.ProfileRepository.
type ProfileRepository struct {
	queries *generated.Queries
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db generated.DBTX) *ProfileRepository {
	return &ProfileRepository{
		queries: generated.New(db),
	}
}

// Get retrieves a profile by owner.
func (r *ProfileRepository) Get(ctx context.Context, ownerID string) (*domain.Profile, error) {
	return profileOrNotFound(r.queries.GetProfile(ctx, ownerID))
}

// GetForUpdate retrieves a profile with a FOR UPDATE lock.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Profile, error) {
	queries := generated.New(tx.(*Tx).PgxTx())
	return profileOrNotFound(queries.GetProfileForUpdate(ctx, ownerID))
}

// Upsert inserts or replaces a profile.
func (r *ProfileRepository) Upsert(ctx context.Context, tx usecase.Transaction, profile *domain.Profile) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return wrapErr(queries.UpsertProfile(ctx, generated.UpsertProfileParams{
		OwnerID:          profile.OwnerID,
		Tier:             string(profile.Tier),
		LifetimeEarned:   profile.LifetimeEarned,
		AmountToNextTier: profile.AmountToNextTier,
		ProgressFraction: profile.ProgressFraction,
		UpdatedAt:        timeToPgTimestamptz(profile.UpdatedAt),
	}))
}

func profileOrNotFound(row generated.Profile, err error) (*domain.Profile, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, wrapErr(err)
	}

	return &domain.Profile{
		OwnerID:          row.OwnerID,
		Tier:             domain.Tier(row.Tier),
		LifetimeEarned:   row.LifetimeEarned,
		AmountToNextTier: row.AmountToNextTier,
		ProgressFraction: row.ProgressFraction,
		UpdatedAt:        row.UpdatedAt.Time,
	}, nil
}
