package memory

import (
	"context"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// ProfileRepository implements usecase.ProfileRepository.
type ProfileRepository struct {
	store *Store
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Get retrieves a profile by owner.
func (r *ProfileRepository) Get(_ context.Context, ownerID string) (*domain.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.profiles[ownerID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// GetForUpdate locks the owner's profile for the rest of the transaction.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string) (*domain.Profile, error) {
	if err := asTx(tx).lock(ctx, "profile:"+ownerID); err != nil {
		return nil, err
	}
	return r.Get(ctx, ownerID)
}

// Upsert stages the profile.
func (r *ProfileRepository) Upsert(_ context.Context, tx usecase.Transaction, profile *domain.Profile) error {
	p := *profile
	return asTx(tx).stage(func(s *Store) {
		s.profiles[p.OwnerID] = &p
	})
}
