package domain

import "time"

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
)

// LedgerDomain names the kind of value an account holds.
type LedgerDomain string

const (
	LedgerDomainDeposit LedgerDomain = "DEPOSIT"
	LedgerDomainSeed    LedgerDomain = "SEED"
	LedgerDomainMoney   LedgerDomain = "MONEY"
)

// Valid reports whether d is a known ledger domain.
func (d LedgerDomain) Valid() bool {
	switch d {
	case LedgerDomainDeposit, LedgerDomainSeed, LedgerDomainMoney:
		return true
	}
	return false
}

// Account is one customer's balance in one ledger domain.
// Available never exceeds Balance and neither goes below zero.
type Account struct {
	ID             string
	OwnerID        string
	Domain         LedgerDomain
	Status         AccountStatus
	Balance        int64
	Available      int64
	LifetimeEarned int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the account is ACTIVE.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ValidateCredit checks if the account can receive amount.
func (a *Account) ValidateCredit(amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	return nil
}

// ValidateDebit checks if the account can give up amount.
func (a *Account) ValidateDebit(amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	switch a.Status {
	case AccountStatusClosed:
		return ErrAccountClosed
	case AccountStatusSuspended:
		return ErrAccountSuspended
	}
	if a.Available < amount || a.Balance < amount {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyCredit adds amount to both balances and returns the new balance.
// Lifetime earnings grow only when countsAsEarning is set.
func (a *Account) ApplyCredit(amount int64, countsAsEarning bool, at time.Time) int64 {
	a.Balance += amount
	a.Available += amount
	if countsAsEarning {
		a.LifetimeEarned += amount
	}
	a.touch(at)
	return a.Balance
}

// ApplyDebit subtracts amount from both balances and returns the new balance.
func (a *Account) ApplyDebit(amount int64, at time.Time) int64 {
	a.Balance -= amount
	a.Available -= amount
	a.touch(at)
	return a.Balance
}

// NextEntryTime returns the timestamp for the next entry on this account.
// Entry timestamps never go backwards even if the wall clock does.
func (a *Account) NextEntryTime(now time.Time) time.Time {
	if now.Before(a.UpdatedAt) {
		return a.UpdatedAt
	}
	return now
}

func (a *Account) touch(at time.Time) {
	a.Version++
	a.UpdatedAt = at
}

// TransitionTo changes the status. CLOSED is terminal.
func (a *Account) TransitionTo(status AccountStatus, at time.Time) error {
	switch status {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
	default:
		return ErrInvalidStatus
	}
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	a.Status = status
	a.UpdatedAt = at
	return nil
}
