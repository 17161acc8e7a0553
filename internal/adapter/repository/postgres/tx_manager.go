package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/greenledger/internal/usecase"
)

type beginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. When the caller's
// context carries a deadline, the remaining time becomes the
// transaction's statement_timeout so a lock wait on the server ends no
// later than the caller gives up.
type TxManager struct {
	pool beginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool beginner) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a transaction. Row locks taken through it are held until
// Commit or Rollback.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	pgxTx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}

	tx := &Tx{tx: pgxTx}
	if deadline, ok := ctx.Deadline(); ok {
		if err := tx.limitStatements(ctx, time.Until(deadline)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, err
		}
	}
	return tx, nil
}

// Tx wraps a pgx transaction. Rollback after Commit is a no-op, so callers
// can defer Rollback unconditionally.
type Tx struct {
	tx   pgx.Tx
	done bool
}

func (t *Tx) limitStatements(ctx context.Context, remaining time.Duration) error {
	ms := remaining.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	_, err := t.tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms))
	return wrapErr(err)
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	t.done = true
	return wrapErr(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction unless it already finished.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	return wrapErr(t.tx.Rollback(ctx))
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
