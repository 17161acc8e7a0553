package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/greenledger/internal/domain"
)

func TestAccountRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := mockPool.NewRows([]string{
		"id", "owner_id", "domain", "status", "balance", "available",
		"lifetime_earned", "version", "created_at", "updated_at",
	}).AddRow("acc-1", "owner-1", "SEED", "ACTIVE", int64(120), int64(120), int64(300), int64(4), now, now)

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs("acc-1").
		WillReturnRows(rows)

	repo := NewAccountRepository(mockPool)
	account, err := repo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Domain != domain.LedgerDomainSeed || account.Balance != 120 || account.LifetimeEarned != 300 {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.Version != 4 || !account.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected version or timestamp: %+v", account)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(mockPool)
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryCreateDuplicateOwnerDomain(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(
			"acc-2", "owner-1", "SEED", "ACTIVE",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mockPool.ExpectRollback()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	repo := NewAccountRepository(mockPool)
	err = repo.Create(ctx, tx, &domain.Account{
		ID:      "acc-2",
		OwnerID: "owner-1",
		Domain:  domain.LedgerDomainSeed,
		Status:  domain.AccountStatusActive,
	})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestIdempotencyKeyRepositoryBind(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "first binder wins", affected: 1},
		{name: "reference already bound", affected: 0, wantErr: domain.ErrDuplicateExternalRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectBegin()
			mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO idempotency_keys")).
				WithArgs("evt-1", "entry-1", "acc-1", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", tt.affected))

			ctx := context.Background()
			tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
			if err != nil {
				t.Fatalf("begin failed: %v", err)
			}

			repo := NewIdempotencyKeyRepository(mockPool)
			err = repo.Bind(ctx, tx, &domain.IdempotencyKey{
				ExternalRef: "evt-1",
				EntryID:     "entry-1",
				AccountID:   "acc-1",
				CreatedAt:   time.Now(),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestIdempotencyKeyRepositoryGetEntryNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("idempotency_keys")).
		WithArgs("evt-unknown").
		WillReturnError(pgx.ErrNoRows)

	repo := NewIdempotencyKeyRepository(mockPool)
	_, err := repo.GetEntry(context.Background(), "evt-unknown")
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestSettlementRunRepositoryClaim(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "first claim for the date", affected: 1, want: true},
		{name: "already claimed", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlement_runs")).
				WithArgs("dir-1", pgxmock.AnyArg(), "PENDING", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("INSERT", tt.affected))

			repo := NewSettlementRunRepository(mockPool)
			claimed, err := repo.Claim(context.Background(), &domain.SettlementRun{
				DirectiveID: "dir-1",
				RunDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Status:      domain.RunStatusPending,
				UpdatedAt:   time.Now(),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claimed != tt.want {
				t.Fatalf("expected claimed=%v, got %v", tt.want, claimed)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestSettlementRunRepositoryClaimConnectionLost(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO settlement_runs")).
		WithArgs("dir-1", pgxmock.AnyArg(), "PENDING", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "08006"})

	repo := NewSettlementRunRepository(mockPool)
	_, err := repo.Claim(context.Background(), &domain.SettlementRun{
		DirectiveID: "dir-1",
		RunDate:     time.Now(),
		Status:      domain.RunStatusPending,
	})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestSettlementRunRepositoryReleaseOnlyPending(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM settlement_runs")).
		WithArgs("dir-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewSettlementRunRepository(mockPool)
	err := repo.Release(context.Background(), "dir-1", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxCommitFailureIsBackendError(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectCommit().WillReturnError(&pgconn.PgError{Code: pgErrSerializationFailure})

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	err = tx.Commit(ctx)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if !isRetryableError(err) {
		t.Fatalf("expected serialization failure to stay retryable")
	}
}

func TestWrapErr(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		backend bool
	}{
		{name: "nil", err: nil},
		{name: "no rows", err: pgx.ErrNoRows},
		{name: "unique violation", err: &pgconn.PgError{Code: pgErrUniqueViolation}},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}},
		{name: "deadlock", err: &pgconn.PgError{Code: pgErrDeadlock}, backend: true},
		{name: "query canceled", err: &pgconn.PgError{Code: pgErrQueryCanceled}, backend: true},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, backend: true},
		{name: "connection does not exist", err: &pgconn.PgError{Code: "08003"}, backend: true},
		{name: "deadline", err: context.DeadlineExceeded, backend: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapErr(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if errors.Is(got, domain.ErrBackendUnavailable) != tt.backend {
				t.Fatalf("backend=%v, got %v", tt.backend, got)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("original error lost: %v", got)
			}
		})
	}
}
