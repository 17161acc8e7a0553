package domain

import "time"

// EntryKind is the operation that produced a ledger entry.
type EntryKind string

const (
	EntryKindEarn        EntryKind = "EARN"
	EntryKindSpend       EntryKind = "SPEND"
	EntryKindConvert     EntryKind = "CONVERT"
	EntryKindTransferIn  EntryKind = "TRANSFER_IN"
	EntryKindTransferOut EntryKind = "TRANSFER_OUT"
)

// LedgerEntry is one immutable balance change on an account.
type LedgerEntry struct {
	OccurredAt         time.Time
	ID                 string
	AccountID          string
	Kind               EntryKind
	Category           string
	Reason             string
	ExternalRef        *string
	TransferID         *string
	CompensatesEntryID *string
	Delta              int64
	BalanceAfter       int64
	AccountVersion     int64
}

// IsCompensation reports whether the entry reverses an earlier entry.
func (e *LedgerEntry) IsCompensation() bool {
	return e.CompensatesEntryID != nil
}

// IdempotencyKey binds an external correlation id to the entry it produced.
type IdempotencyKey struct {
	CreatedAt   time.Time
	ExternalRef string
	EntryID     string
	AccountID   string
}

// ReplayBalance folds entry deltas in order starting from zero.
// Entries must already be sorted by (OccurredAt, AccountVersion).
func ReplayBalance(entries []*LedgerEntry) int64 {
	var balance int64
	for _, e := range entries {
		balance += e.Delta
	}
	return balance
}
