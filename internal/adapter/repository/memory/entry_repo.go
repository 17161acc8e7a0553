package memory

import (
	"context"
	"sort"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages an entry.
func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	e := *entry
	return asTx(tx).stage(func(s *Store) {
		s.entries[e.ID] = &e
		s.byAccount[e.AccountID] = append(s.byAccount[e.AccountID], e.ID)
	})
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(_ context.Context, id string) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

// ListByAccount returns entries newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	all, err := r.ListForReplay(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	if offset >= len(all) {
		return []*domain.LedgerEntry{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// ListForReplay returns all entries in acceptance order.
func (r *EntryRepository) ListForReplay(_ context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.byAccount[accountID]
	entries := make([]*domain.LedgerEntry, 0, len(ids))
	for _, id := range ids {
		cp := *r.store.entries[id]
		entries = append(entries, &cp)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].AccountVersion < entries[j].AccountVersion
		}
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
	return entries, nil
}

// IdempotencyKeyRepository implements usecase.IdempotencyKeyRepository.
type IdempotencyKeyRepository struct {
	store *Store
}

// NewIdempotencyKeyRepository creates a new IdempotencyKeyRepository.
func NewIdempotencyKeyRepository(store *Store) *IdempotencyKeyRepository {
	return &IdempotencyKeyRepository{store: store}
}

// Bind claims the reference for the transaction. A concurrent binder of
// the same reference waits for this transaction to finish.
func (r *IdempotencyKeyRepository) Bind(ctx context.Context, tx usecase.Transaction, key *domain.IdempotencyKey) error {
	t := asTx(tx)
	if err := t.lock(ctx, "ref:"+key.ExternalRef); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, taken := r.store.keys[key.ExternalRef]
	r.store.mu.RUnlock()
	if taken {
		return domain.ErrDuplicateExternalRef
	}

	k := *key
	return t.stage(func(s *Store) {
		s.keys[k.ExternalRef] = &k
	})
}

// GetEntry returns the entry bound to ref.
func (r *IdempotencyKeyRepository) GetEntry(_ context.Context, ref string) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	key, ok := r.store.keys[ref]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	e, ok := r.store.entries[key.EntryID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}
