package memory

import (
	"context"

	"github.com/iho/greenledger/internal/domain"
)

// MerchantRepository implements usecase.MerchantRepository.
type MerchantRepository struct {
	store *Store
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(store *Store) *MerchantRepository {
	return &MerchantRepository{store: store}
}

// Put registers or replaces a merchant.
func (r *MerchantRepository) Put(_ context.Context, merchant domain.EcoMerchant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.merchants[merchant.BusinessNumber] = &merchant
	return nil
}

// GetByBusinessNumber looks up a merchant.
func (r *MerchantRepository) GetByBusinessNumber(_ context.Context, businessNumber string) (*domain.EcoMerchant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.merchants[businessNumber]
	if !ok {
		return nil, domain.ErrMerchantNotFound
	}
	cp := *m
	return &cp, nil
}
