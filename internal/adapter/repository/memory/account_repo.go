package memory

import (
	"context"
	"sort"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stages a new account, enforcing one account per owner and domain.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t := asTx(tx)
	if err := t.lock(ctx, "owner:"+account.OwnerID+":"+string(account.Domain)); err != nil {
		return err
	}

	if _, err := r.GetByOwner(ctx, account.OwnerID, account.Domain); err == nil {
		return domain.ErrAccountExists
	}

	acc := *account
	return t.stage(func(s *Store) {
		s.accounts[acc.ID] = &acc
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

// GetByOwner retrieves the owner's account in a ledger domain.
func (r *AccountRepository) GetByOwner(_ context.Context, ownerID string, ledger domain.LedgerDomain) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, acc := range r.store.accounts {
		if acc.OwnerID == ownerID && acc.Domain == ledger {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// ListByOwner lists the owner's accounts ordered by creation.
func (r *AccountRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var accounts []*domain.Account
	for _, acc := range r.store.accounts {
		if acc.OwnerID == ownerID {
			cp := *acc
			accounts = append(accounts, &cp)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// GetByIDForUpdate locks the account for the rest of the transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if err := asTx(tx).lock(ctx, "account:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update stages the account's new state.
func (r *AccountRepository) Update(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	acc := *account
	return asTx(tx).stage(func(s *Store) {
		s.accounts[acc.ID] = &acc
	})
}
