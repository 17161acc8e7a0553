package domain

import (
	"errors"
	"testing"
	"time"
)

func TestScheduledTransfer_IsDue(t *testing.T) {
	directive := ScheduledTransfer{DayOfMonth: 15, Enabled: true}

	if !directive.IsDue(time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected directive to be due on the 15th")
	}
	if directive.IsDue(time.Date(2025, 4, 16, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("directive must not be due on the 16th")
	}

	directive.Enabled = false
	if directive.IsDue(time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("disabled directive must never be due")
	}
}

func TestScheduledTransfer_NoMonthEndRollover(t *testing.T) {
	directive := ScheduledTransfer{DayOfMonth: 31, Enabled: true}

	for day := 1; day <= 30; day++ {
		if directive.IsDue(time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("day-31 directive fired on April %d", day)
		}
	}
}

func TestScheduledTransfer_Validate(t *testing.T) {
	valid := ScheduledTransfer{SourceAccountID: "a", DestinationAccountID: "b", DayOfMonth: 1, Amount: 100}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := valid
	same.DestinationAccountID = "a"
	if err := same.Validate(); !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected ErrSameAccount, got %v", err)
	}

	badDay := valid
	badDay.DayOfMonth = 32
	if err := badDay.Validate(); !errors.Is(err, ErrInvalidDayOfMonth) {
		t.Fatalf("expected ErrInvalidDayOfMonth, got %v", err)
	}

	badAmount := valid
	badAmount.Amount = 0
	if err := badAmount.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRunDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	got := RunDate(time.Date(2025, 4, 15, 23, 59, 0, 0, seoul))
	want := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if !RunStatusSkipped.Terminal() || RunStatusExecuting.Terminal() {
		t.Fatalf("unexpected terminal states")
	}
}
