// Package memory is an in-process implementation of the ledger store.
// Row locks are emulated with per-key semaphores held until the owning
// transaction ends, and writes become visible only on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Store holds committed state shared by all repositories.
type Store struct {
	mu sync.RWMutex

	accounts   map[string]*domain.Account
	entries    map[string]*domain.LedgerEntry
	byAccount  map[string][]string
	keys       map[string]*domain.IdempotencyKey
	profiles   map[string]*domain.Profile
	directives map[string]*domain.ScheduledTransfer
	runs       map[runKey]*domain.SettlementRun
	merchants  map[string]*domain.EcoMerchant
	outbox     map[string]*domain.OutboxEvent

	lmu   sync.Mutex
	locks map[string]*rowLock
}

// rowLock is dropped from Store.locks once no transaction holds or waits
// for it.
type rowLock struct {
	ch   chan struct{}
	refs int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]*domain.Account),
		entries:    make(map[string]*domain.LedgerEntry),
		byAccount:  make(map[string][]string),
		keys:       make(map[string]*domain.IdempotencyKey),
		profiles:   make(map[string]*domain.Profile),
		directives: make(map[string]*domain.ScheduledTransfer),
		runs:       make(map[runKey]*domain.SettlementRun),
		merchants:  make(map[string]*domain.EcoMerchant),
		outbox:     make(map[string]*domain.OutboxEvent),
		locks:      make(map[string]*rowLock),
	}
}

func (s *Store) acquireRef(key string) *rowLock {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &rowLock{ch: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	return l
}

func (s *Store) dropRef(key string, l *rowLock) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

func (s *Store) lockCount() int {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	return len(s.locks)
}

// backendErr reports a context that ended while waiting on the store the
// same way the postgres adapter reports a timeout.
func backendErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, backendErr(err)
	}
	return &Tx{store: m.store, held: make(map[string]*rowLock)}, nil
}

// Tx buffers writes and holds row locks until Commit or Rollback.
type Tx struct {
	store *Store
	held  map[string]*rowLock
	ops   []func(*Store)
	done  bool
}

// Commit applies buffered writes atomically and releases locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	if err := ctx.Err(); err != nil {
		t.finish()
		return backendErr(err)
	}

	t.store.mu.Lock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards buffered writes and releases locks.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.ops = nil
	for key, l := range t.held {
		<-l.ch
		t.store.dropRef(key, l)
		delete(t.held, key)
	}
}

// lock blocks until the transaction holds key or ctx ends.
func (t *Tx) lock(ctx context.Context, key string) error {
	if t.done {
		return ErrTxDone
	}
	if _, ok := t.held[key]; ok {
		return nil
	}

	l := t.store.acquireRef(key)
	select {
	case l.ch <- struct{}{}:
		t.held[key] = l
		return nil
	case <-ctx.Done():
		t.store.dropRef(key, l)
		return backendErr(ctx.Err())
	}
}

func (t *Tx) stage(op func(*Store)) error {
	if t.done {
		return ErrTxDone
	}
	t.ops = append(t.ops, op)
	return nil
}

func asTx(tx usecase.Transaction) *Tx {
	return tx.(*Tx)
}
