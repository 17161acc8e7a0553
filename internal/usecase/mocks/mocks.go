package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// AccountRepositoryStub wraps a real repository and lets tests override
// individual calls.
type AccountRepositoryStub struct {
	usecase.AccountRepository

	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
}

func (m *AccountRepositoryStub) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return m.AccountRepository.GetByID(ctx, id)
}

func (m *AccountRepositoryStub) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.AccountRepository.GetByIDForUpdate(ctx, tx, id)
}

func (m *AccountRepositoryStub) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account)
	}
	return m.AccountRepository.Update(ctx, tx, account)
}

// EntryRepositoryStub wraps a real repository and lets tests override
// individual calls.
type EntryRepositoryStub struct {
	usecase.EntryRepository

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListForReplayFunc func(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
}

func (m *EntryRepositoryStub) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	return m.EntryRepository.Create(ctx, tx, entry)
}

func (m *EntryRepositoryStub) ListForReplay(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	if m.ListForReplayFunc != nil {
		return m.ListForReplayFunc(ctx, accountID)
	}
	return m.EntryRepository.ListForReplay(ctx, accountID)
}

// SequentialIDGenerator hands out predictable IDs.
type SequentialIDGenerator struct {
	Prefix  string
	mu      sync.Mutex
	counter int
}

func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{Prefix: prefix}
}

func (m *SequentialIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s-%04d", m.Prefix, m.counter)
}

// IdempotencyStoreStub is an in-memory IdempotencyStore.
type IdempotencyStoreStub struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewIdempotencyStoreStub() *IdempotencyStoreStub {
	return &IdempotencyStoreStub{data: make(map[string][]byte)}
}

func (m *IdempotencyStoreStub) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	m.data[key] = response
	return false, nil, nil
}

func (m *IdempotencyStoreStub) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *IdempotencyStoreStub) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
