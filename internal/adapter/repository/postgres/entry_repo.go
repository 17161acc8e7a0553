package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/postgres/generated"
	"github.com/iho/greenledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// Create appends an entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return wrapErr(queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:                 entry.ID,
		AccountID:          entry.AccountID,
		Kind:               string(entry.Kind),
		Category:           entry.Category,
		Reason:             entry.Reason,
		ExternalRef:        ptrToPgText(entry.ExternalRef),
		TransferID:         ptrToPgText(entry.TransferID),
		CompensatesEntryID: ptrToPgText(entry.CompensatesEntryID),
		Delta:              entry.Delta,
		BalanceAfter:       entry.BalanceAfter,
		AccountVersion:     entry.AccountVersion,
		OccurredAt:         timeToPgTimestamptz(entry.OccurredAt),
	}))
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, wrapErr(err)
	}

	return rowToEntry(row), nil
}

// ListByAccount lists an account's entries newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	return rowsToEntries(rows), nil
}

// ListForReplay returns every entry of the account in acceptance order.
func (r *EntryRepository) ListForReplay(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListEntriesForReplay(ctx, accountID)
	if err != nil {
		return nil, wrapErr(err)
	}

	return rowsToEntries(rows), nil
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.LedgerEntry {
	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:                 row.ID,
		AccountID:          row.AccountID,
		Kind:               domain.EntryKind(row.Kind),
		Category:           row.Category,
		Reason:             row.Reason,
		ExternalRef:        pgTextToPtr(row.ExternalRef),
		TransferID:         pgTextToPtr(row.TransferID),
		CompensatesEntryID: pgTextToPtr(row.CompensatesEntryID),
		Delta:              row.Delta,
		BalanceAfter:       row.BalanceAfter,
		AccountVersion:     row.AccountVersion,
		OccurredAt:         row.OccurredAt.Time,
	}
}

// IdempotencyKeyRepository implements usecase.IdempotencyKeyRepository.
type IdempotencyKeyRepository struct {
	queries *generated.Queries
}

// NewIdempotencyKeyRepository creates a new IdempotencyKeyRepository.
func NewIdempotencyKeyRepository(db generated.DBTX) *IdempotencyKeyRepository {
	return &IdempotencyKeyRepository{
		queries: generated.New(db),
	}
}

// Bind claims an external reference for an entry in the same transaction.
// A concurrent binder blocks on the primary key until this transaction
// ends, then sees the conflict.
func (r *IdempotencyKeyRepository) Bind(ctx context.Context, tx usecase.Transaction, key *domain.IdempotencyKey) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	n, err := queries.BindIdempotencyKey(ctx, generated.BindIdempotencyKeyParams{
		ExternalRef: key.ExternalRef,
		EntryID:     key.EntryID,
		AccountID:   key.AccountID,
		CreatedAt:   timeToPgTimestamptz(key.CreatedAt),
	})
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return domain.ErrDuplicateExternalRef
	}
	return nil
}

// GetEntry returns the entry bound to ref.
func (r *IdempotencyKeyRepository) GetEntry(ctx context.Context, ref string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetEntryByExternalRef(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, wrapErr(err)
	}

	return rowToEntry(row), nil
}
