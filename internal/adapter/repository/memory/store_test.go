package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iho/greenledger/internal/domain"
)

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	repos := New()
	ctx := context.Background()

	tx, _ := repos.TxManager.Begin(ctx)
	if err := repos.Accounts.Create(ctx, tx, &domain.Account{ID: "a1", OwnerID: "o1", Domain: domain.LedgerDomainSeed}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if _, err := repos.Accounts.GetByID(ctx, "a1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found after rollback, got %v", err)
	}
}

func TestTx_CommitPublishesWrites(t *testing.T) {
	repos := New()
	ctx := context.Background()

	tx, _ := repos.TxManager.Begin(ctx)
	_ = repos.Accounts.Create(ctx, tx, &domain.Account{ID: "a1", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	if _, err := repos.Accounts.GetByID(ctx, "a1"); err == nil {
		t.Fatal("uncommitted account must not be visible")
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	acc, err := repos.Accounts.GetByOwner(ctx, "o1", domain.LedgerDomainSeed)
	if err != nil || acc.ID != "a1" {
		t.Fatalf("expected committed account, got %v %v", acc, err)
	}
	if err := tx.Commit(ctx); !errors.Is(err, ErrTxDone) {
		t.Fatalf("expected ErrTxDone on second commit, got %v", err)
	}
}

func TestAccountRepository_DuplicateOwnerDomain(t *testing.T) {
	repos := New()
	ctx := context.Background()

	tx, _ := repos.TxManager.Begin(ctx)
	_ = repos.Accounts.Create(ctx, tx, &domain.Account{ID: "a1", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	_ = tx.Commit(ctx)

	tx, _ = repos.TxManager.Begin(ctx)
	defer func() { _ = tx.Rollback(ctx) }()
	err := repos.Accounts.Create(ctx, tx, &domain.Account{ID: "a2", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAccountRepository_LockBlocksUntilCommit(t *testing.T) {
	repos := New()
	ctx := context.Background()

	tx, _ := repos.TxManager.Begin(ctx)
	_ = repos.Accounts.Create(ctx, tx, &domain.Account{ID: "a1", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	_ = tx.Commit(ctx)

	first, _ := repos.TxManager.Begin(ctx)
	if _, err := repos.Accounts.GetByIDForUpdate(ctx, first, "a1"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	second, _ := repos.TxManager.Begin(ctx)
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := repos.Accounts.GetByIDForUpdate(waitCtx, second, "a1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second locker to time out, got %v", err)
	}
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected lock timeout to be a backend error, got %v", err)
	}

	_ = first.Rollback(ctx)
	if _, err := repos.Accounts.GetByIDForUpdate(ctx, second, "a1"); err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = second.Rollback(ctx)
}

func TestTx_BeginOnEndedContext(t *testing.T) {
	repos := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repos.TxManager.Begin(ctx); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestStore_ReleasesIdleLocks(t *testing.T) {
	repos := New()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		tx, _ := repos.TxManager.Begin(ctx)
		err := repos.Keys.Bind(ctx, tx, &domain.IdempotencyKey{
			ExternalRef: fmt.Sprintf("evt-%d", i),
			EntryID:     "entry",
			AccountID:   "a1",
		})
		if err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	first, _ := repos.TxManager.Begin(ctx)
	second, _ := repos.TxManager.Begin(ctx)
	_ = repos.Accounts.Create(ctx, first, &domain.Account{ID: "a1", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_ = repos.Accounts.Create(waitCtx, second, &domain.Account{ID: "a2", OwnerID: "o1", Domain: domain.LedgerDomainSeed})
	_ = first.Rollback(ctx)
	_ = second.Rollback(ctx)

	if n := repos.Store.lockCount(); n != 0 {
		t.Fatalf("expected no locks left, got %d", n)
	}
}

func TestIdempotencyKeyRepository_ConcurrentBind(t *testing.T) {
	repos := New()
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		dupes   int
		unknown []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, _ := repos.TxManager.Begin(ctx)
			entryID := string(rune('a' + i))
			_ = repos.Entries.Create(ctx, tx, &domain.LedgerEntry{ID: entryID, AccountID: "acc"})
			err := repos.Keys.Bind(ctx, tx, &domain.IdempotencyKey{ExternalRef: "ref-1", EntryID: entryID, AccountID: "acc"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				_ = tx.Commit(ctx)
				won++
			case errors.Is(err, domain.ErrDuplicateExternalRef):
				_ = tx.Rollback(ctx)
				dupes++
			default:
				_ = tx.Rollback(ctx)
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	if won != 1 || dupes != workers-1 || len(unknown) != 0 {
		t.Fatalf("won=%d dupes=%d unknown=%v", won, dupes, unknown)
	}
	if _, err := repos.Keys.GetEntry(ctx, "ref-1"); err != nil {
		t.Fatalf("expected bound entry, got %v", err)
	}
}

func TestEntryRepository_Ordering(t *testing.T) {
	repos := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tx, _ := repos.TxManager.Begin(ctx)
	for i, id := range []string{"e1", "e2", "e3"} {
		_ = repos.Entries.Create(ctx, tx, &domain.LedgerEntry{
			ID:             id,
			AccountID:      "acc",
			OccurredAt:     base,
			AccountVersion: int64(i + 1),
		})
	}
	_ = tx.Commit(ctx)

	replay, _ := repos.Entries.ListForReplay(ctx, "acc")
	if replay[0].ID != "e1" || replay[2].ID != "e3" {
		t.Fatalf("unexpected replay order: %s..%s", replay[0].ID, replay[2].ID)
	}

	page, _ := repos.Entries.ListByAccount(ctx, "acc", 2, 0)
	if len(page) != 2 || page[0].ID != "e3" {
		t.Fatalf("expected newest first, got %d entries starting %s", len(page), page[0].ID)
	}
	empty, _ := repos.Entries.ListByAccount(ctx, "acc", 2, 10)
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestSettlementRunRepository_ClaimOncePerDate(t *testing.T) {
	repos := New()
	ctx := context.Background()
	day := time.Date(2026, 3, 25, 9, 30, 0, 0, time.UTC)

	run := &domain.SettlementRun{DirectiveID: "d1", RunDate: day, Status: domain.RunStatusPending}
	claimed, err := repos.Runs.Claim(ctx, run)
	if err != nil || !claimed {
		t.Fatalf("first claim: %v %v", claimed, err)
	}
	claimed, _ = repos.Runs.Claim(ctx, &domain.SettlementRun{DirectiveID: "d1", RunDate: day.Add(time.Hour)})
	if claimed {
		t.Fatal("second claim on the same date must fail")
	}

	run.Status = domain.RunStatusSettled
	if err := repos.Runs.UpdateStatus(ctx, run); err != nil {
		t.Fatalf("update: %v", err)
	}
	runs, _ := repos.Runs.ListByDate(ctx, day)
	if len(runs) != 1 || runs[0].Status != domain.RunStatusSettled {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestSettlementRunRepository_ReleaseOnlyPending(t *testing.T) {
	repos := New()
	ctx := context.Background()
	day := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"pending", "failed"} {
		if _, err := repos.Runs.Claim(ctx, &domain.SettlementRun{DirectiveID: id, RunDate: day, Status: domain.RunStatusPending}); err != nil {
			t.Fatalf("claim %s: %v", id, err)
		}
	}
	if err := repos.Runs.UpdateStatus(ctx, &domain.SettlementRun{DirectiveID: "failed", RunDate: day, Status: domain.RunStatusFailed}); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, id := range []string{"pending", "failed"} {
		if err := repos.Runs.Release(ctx, id, day.Add(8*time.Hour)); err != nil {
			t.Fatalf("release %s: %v", id, err)
		}
	}

	claimed, _ := repos.Runs.Claim(ctx, &domain.SettlementRun{DirectiveID: "pending", RunDate: day, Status: domain.RunStatusPending})
	if !claimed {
		t.Fatal("released run must be claimable again")
	}
	claimed, _ = repos.Runs.Claim(ctx, &domain.SettlementRun{DirectiveID: "failed", RunDate: day, Status: domain.RunStatusPending})
	if claimed {
		t.Fatal("a finished run must survive release")
	}
}

func TestScheduledTransferRepository_ListDue(t *testing.T) {
	repos := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = repos.Directives.Create(ctx, &domain.ScheduledTransfer{ID: "d2", DayOfMonth: 25, Enabled: true, CreatedAt: base.Add(time.Minute)})
	_ = repos.Directives.Create(ctx, &domain.ScheduledTransfer{ID: "d1", DayOfMonth: 25, Enabled: true, CreatedAt: base})
	_ = repos.Directives.Create(ctx, &domain.ScheduledTransfer{ID: "d3", DayOfMonth: 25, Enabled: false, CreatedAt: base})
	_ = repos.Directives.Create(ctx, &domain.ScheduledTransfer{ID: "d4", DayOfMonth: 10, Enabled: true, CreatedAt: base})

	due, _ := repos.Directives.ListDue(ctx, 25)
	if len(due) != 2 || due[0].ID != "d1" || due[1].ID != "d2" {
		t.Fatalf("unexpected due directives: %+v", due)
	}
	if err := repos.Directives.Update(ctx, &domain.ScheduledTransfer{ID: "missing"}); !errors.Is(err, domain.ErrScheduledTransferNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
