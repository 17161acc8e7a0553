package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/infrastructure/postgres/generated"
	"github.com/iho/greenledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create inserts a new account. A second account for the same owner and
// domain fails with domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		OwnerID:        account.OwnerID,
		Domain:         string(account.Domain),
		Status:         string(account.Status),
		Balance:        account.Balance,
		Available:      account.Available,
		LifetimeEarned: account.LifetimeEarned,
		Version:        account.Version,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrAccountExists
	}
	return wrapErr(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrapErr(err)
	}

	return rowToAccount(row), nil
}

// GetByOwner retrieves the owner's account in a ledger domain.
func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID string, ledger domain.LedgerDomain) (*domain.Account, error) {
	row, err := r.queries.GetAccountByOwner(ctx, generated.GetAccountByOwnerParams{
		OwnerID: ownerID,
		Domain:  string(ledger),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrapErr(err)
	}

	return rowToAccount(row), nil
}

// ListByOwner lists every account of an owner.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapErr(err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// ListIDs pages through account IDs in creation order.
func (r *AccountRepository) ListIDs(ctx context.Context, limit, offset int) ([]string, error) {
	ids, err := r.queries.ListAccountIDs(ctx, generated.ListAccountIDsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	return ids, wrapErr(err)
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, wrapErr(err)
	}

	return rowToAccount(row), nil
}

// Update writes the account's balances, status and version.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	return wrapErr(queries.UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:             account.ID,
		Status:         string(account.Status),
		Balance:        account.Balance,
		Available:      account.Available,
		LifetimeEarned: account.LifetimeEarned,
		Version:        account.Version,
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	}))
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		Domain:         domain.LedgerDomain(row.Domain),
		Status:         domain.AccountStatus(row.Status),
		Balance:        row.Balance,
		Available:      row.Available,
		LifetimeEarned: row.LifetimeEarned,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
