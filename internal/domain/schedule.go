package domain

import "time"

// ScheduledTransfer is a recurring monthly transfer directive.
type ScheduledTransfer struct {
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ID                   string
	OwnerID              string
	SourceAccountID      string
	DestinationAccountID string
	DayOfMonth           int
	Amount               int64
	Enabled              bool
}

// Validate checks the directive fields.
func (s *ScheduledTransfer) Validate() error {
	if s.SourceAccountID == "" || s.DestinationAccountID == "" {
		return ErrInvalidIDFormat
	}
	if s.SourceAccountID == s.DestinationAccountID {
		return ErrSameAccount
	}
	if err := ValidateDayOfMonth(s.DayOfMonth); err != nil {
		return err
	}
	return ValidateAmount(s.Amount)
}

// IsDue reports whether the directive triggers on date. A day missing from
// the month never triggers.
func (s *ScheduledTransfer) IsDue(date time.Time) bool {
	return s.Enabled && s.DayOfMonth == date.Day()
}

// RunStatus is the state of one directive within one settlement pass.
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusExecuting RunStatus = "EXECUTING"
	RunStatusSettled   RunStatus = "SETTLED"
	RunStatusSkipped   RunStatus = "SKIPPED"
	RunStatusFailed    RunStatus = "FAILED"
)

// Terminal reports whether no further transition is expected.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSettled || s == RunStatusSkipped || s == RunStatusFailed
}

// Skip reasons
const (
	SkipReasonSourceMissing       = "source account missing"
	SkipReasonSourceInactive      = "source account inactive"
	SkipReasonDestinationMissing  = "destination account missing"
	SkipReasonDestinationInactive = "destination account inactive"
	SkipReasonInsufficientFunds   = "insufficient available balance"
	SkipReasonInvalidAmount       = "non-positive amount"
)

// SettlementRun records what happened to one directive on one run date.
type SettlementRun struct {
	RunDate     time.Time
	UpdatedAt   time.Time
	DirectiveID string
	Status      RunStatus
	Reason      string
	TransferID  *string
}

// RunDate truncates t to its calendar date, expressed as midnight UTC.
func RunDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
