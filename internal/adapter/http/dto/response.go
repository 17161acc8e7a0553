package dto

import (
	"time"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable"`
}

// AccountResponse represents an account in API responses. The owner's raw
// identity is never exposed.
type AccountResponse struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	ID             string    `json:"id"`
	Domain         string    `json:"domain"`
	Status         string    `json:"status"`
	Balance        int64     `json:"balance"`
	Available      int64     `json:"available"`
	LifetimeEarned int64     `json:"lifetimeEarned"`
	Version        int64     `json:"version"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		ID:             a.ID,
		Domain:         string(a.Domain),
		Status:         string(a.Status),
		Balance:        a.Balance,
		Available:      a.Available,
		LifetimeEarned: a.LifetimeEarned,
		Version:        a.Version,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	OccurredAt         time.Time `json:"occurredAt"`
	ExternalRef        *string   `json:"externalRef,omitempty"`
	TransferID         *string   `json:"transferId,omitempty"`
	CompensatesEntryID *string   `json:"compensatesEntryId,omitempty"`
	ID                 string    `json:"id"`
	AccountID          string    `json:"accountId"`
	Kind               string    `json:"kind"`
	Category           string    `json:"category"`
	Reason             string    `json:"reason,omitempty"`
	Delta              int64     `json:"delta"`
	BalanceAfter       int64     `json:"balanceAfter"`
	AccountVersion     int64     `json:"accountVersion"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	if e == nil {
		return nil
	}
	return &EntryResponse{
		OccurredAt:         e.OccurredAt,
		ExternalRef:        e.ExternalRef,
		TransferID:         e.TransferID,
		CompensatesEntryID: e.CompensatesEntryID,
		ID:                 e.ID,
		AccountID:          e.AccountID,
		Kind:               string(e.Kind),
		Category:           e.Category,
		Reason:             e.Reason,
		Delta:              e.Delta,
		BalanceAfter:       e.BalanceAfter,
		AccountVersion:     e.AccountVersion,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse represents a page of entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// MutationResponse reports the authoritative balance after a mutation.
type MutationResponse struct {
	Account *AccountResponse `json:"account"`
	Entry   *EntryResponse   `json:"entry"`
	Balance int64            `json:"balance"`
}

// MutationFromResult converts a ledger mutation result to response.
func MutationFromResult(r *usecase.MutationResult) *MutationResponse {
	return &MutationResponse{
		Account: AccountFromDomain(r.Account),
		Entry:   EntryFromDomain(r.Entry),
		Balance: r.NewBalance(),
	}
}

// TransferResponse represents a transfer outcome in API responses.
type TransferResponse struct {
	OutEntry          *EntryResponse `json:"outEntry,omitempty"`
	InEntry           *EntryResponse `json:"inEntry,omitempty"`
	CompensationEntry *EntryResponse `json:"compensationEntry,omitempty"`
	TransferID        string         `json:"transferId"`
	FromBalance       int64          `json:"fromBalance"`
	ToBalance         int64          `json:"toBalance"`
	Compensated       bool           `json:"compensated"`
}

// TransferFromResult converts a transfer result to response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		OutEntry:          EntryFromDomain(r.OutEntry),
		InEntry:           EntryFromDomain(r.InEntry),
		CompensationEntry: EntryFromDomain(r.CompensationEntry),
		TransferID:        r.TransferID,
		FromBalance:       r.FromBalance,
		ToBalance:         r.ToBalance,
		Compensated:       r.Compensated,
	}
}

// CompensatedTransferResponse is returned with 409 when the destination leg
// failed and the source was credited back.
type CompensatedTransferResponse struct {
	ErrorResponse
	Transfer *TransferResponse `json:"transfer"`
}

// IngestResponse reports whether an inbound event credited the ledger.
type IngestResponse struct {
	EntryID          string `json:"entryId"`
	Accepted         bool   `json:"accepted"`
	ResultingBalance int64  `json:"resultingBalance"`
}

// IngestFromResult converts an ingestion result to response.
func IngestFromResult(r *usecase.IngestResult) *IngestResponse {
	return &IngestResponse{
		EntryID:          r.Entry.ID,
		Accepted:         r.Created,
		ResultingBalance: r.ResultingBalance(),
	}
}

// CardMatchResponse reports the merchant match for a card purchase.
type CardMatchResponse struct {
	EntryID          string `json:"entryId,omitempty"`
	Merchant         string `json:"merchant,omitempty"`
	Tier             string `json:"tier,omitempty"`
	Reward           int64  `json:"reward"`
	ResultingBalance int64  `json:"resultingBalance,omitempty"`
	Matched          bool   `json:"matched"`
	Accepted         bool   `json:"accepted"`
}

// CardMatchFromResult converts a match result to response.
func CardMatchFromResult(r *usecase.MatchResult) *CardMatchResponse {
	resp := &CardMatchResponse{
		Tier:    string(r.Tier),
		Reward:  r.Reward,
		Matched: r.Matched,
	}
	if r.Merchant != nil {
		resp.Merchant = r.Merchant.Name
	}
	if r.Ingest != nil {
		resp.EntryID = r.Ingest.Entry.ID
		resp.Accepted = r.Ingest.Created
		resp.ResultingBalance = r.Ingest.ResultingBalance()
	}
	return resp
}

// LedgerQueryResponse is the tier and balance answer for sibling services.
type LedgerQueryResponse struct {
	CurrentTier      string  `json:"currentTier"`
	NextTier         string  `json:"nextTier,omitempty"`
	Level            int     `json:"level"`
	LifetimeEarned   int64   `json:"lifetimeEarned"`
	CurrentBalance   int64   `json:"currentBalance"`
	AmountToNextTier int64   `json:"amountToNextTier"`
	ProgressFraction float64 `json:"progressFraction"`
}

// LedgerQueryFromResult converts a ledger query to response.
func LedgerQueryFromResult(q *usecase.LedgerQuery) *LedgerQueryResponse {
	return &LedgerQueryResponse{
		CurrentTier:      string(q.Status.Tier),
		NextTier:         string(q.Status.NextTier),
		Level:            q.Status.Level,
		LifetimeEarned:   q.Status.LifetimeEarned,
		CurrentBalance:   q.Balance,
		AmountToNextTier: q.Status.AmountToNextTier,
		ProgressFraction: q.Status.ProgressFraction,
	}
}

// ToTierSnapshot converts the wire answer into the gateway's view.
func (r *LedgerQueryResponse) ToTierSnapshot() *usecase.TierSnapshot {
	return &usecase.TierSnapshot{
		Tier:             domain.Tier(r.CurrentTier),
		LifetimeEarned:   r.LifetimeEarned,
		CurrentBalance:   r.CurrentBalance,
		AmountToNextTier: r.AmountToNextTier,
		ProgressFraction: r.ProgressFraction,
	}
}

// AccountSummariesResponse lists a customer's accounts for sibling services.
type AccountSummariesResponse struct {
	Accounts []usecase.AccountSummary `json:"accounts"`
}

// ScheduleResponse represents a recurring transfer directive.
type ScheduleResponse struct {
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	ID                   string    `json:"id"`
	SourceAccountID      string    `json:"sourceAccountId"`
	DestinationAccountID string    `json:"destinationAccountId"`
	DayOfMonth           int       `json:"dayOfMonth"`
	Amount               int64     `json:"amount"`
	Enabled              bool      `json:"enabled"`
}

// ScheduleFromDomain converts a directive to response.
func ScheduleFromDomain(s *domain.ScheduledTransfer) *ScheduleResponse {
	return &ScheduleResponse{
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
		ID:                   s.ID,
		SourceAccountID:      s.SourceAccountID,
		DestinationAccountID: s.DestinationAccountID,
		DayOfMonth:           s.DayOfMonth,
		Amount:               s.Amount,
		Enabled:              s.Enabled,
	}
}

// ListSchedulesResponse represents a page of directives.
type ListSchedulesResponse struct {
	Schedules []*ScheduleResponse `json:"schedules"`
}

// SchedulesFromDomain converts directives to responses.
func SchedulesFromDomain(directives []*domain.ScheduledTransfer) []*ScheduleResponse {
	result := make([]*ScheduleResponse, len(directives))
	for i, d := range directives {
		result[i] = ScheduleFromDomain(d)
	}
	return result
}

// SettlementRunResponse is one recorded scheduler decision.
type SettlementRunResponse struct {
	UpdatedAt   time.Time `json:"updatedAt"`
	TransferID  *string   `json:"transferId,omitempty"`
	RunDate     string    `json:"runDate"`
	DirectiveID string    `json:"directiveId"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
}

// SettlementRunsFromDomain converts runs to responses.
func SettlementRunsFromDomain(runs []*domain.SettlementRun) []*SettlementRunResponse {
	result := make([]*SettlementRunResponse, len(runs))
	for i, r := range runs {
		result[i] = &SettlementRunResponse{
			UpdatedAt:   r.UpdatedAt,
			TransferID:  r.TransferID,
			RunDate:     r.RunDate.Format(time.DateOnly),
			DirectiveID: r.DirectiveID,
			Status:      string(r.Status),
			Reason:      r.Reason,
		}
	}
	return result
}

// BenefitResponse is the monthly preferential benefit estimate.
type BenefitResponse struct {
	Tier             string `json:"tier"`
	SavingsRate      string `json:"savingsRate"`
	LoanRate         string `json:"loanRate"`
	CardRate         string `json:"cardRate"`
	SavingsBalance   int64  `json:"savingsBalance"`
	LoanBalance      int64  `json:"loanBalance"`
	MonthlyCardUsage int64  `json:"monthlyCardUsage"`
	SavingsInterest  int64  `json:"savingsInterest"`
	LoanBenefit      int64  `json:"loanBenefit"`
	CardDiscount     int64  `json:"cardDiscount"`
	Total            int64  `json:"total"`
}

// BenefitFromResult converts a benefit calculation to response. Rates are
// percentages rendered as decimal strings.
func BenefitFromResult(b *usecase.Benefit) *BenefitResponse {
	return &BenefitResponse{
		Tier:             string(b.Tier),
		SavingsRate:      b.Rates.Savings.String(),
		LoanRate:         b.Rates.Loan.String(),
		CardRate:         b.Rates.Card.String(),
		SavingsBalance:   b.SavingsBalance,
		LoanBalance:      b.LoanBalance,
		MonthlyCardUsage: b.MonthlyCardUsage,
		SavingsInterest:  b.SavingsInterest,
		LoanBenefit:      b.LoanBenefit,
		CardDiscount:     b.CardDiscount,
		Total:            b.Total,
	}
}

// ReconciliationResponse reports whether an account's log reproduces its balance.
type ReconciliationResponse struct {
	CheckedAt       time.Time `json:"checkedAt"`
	AccountID       string    `json:"accountId"`
	Problems        []string  `json:"problems,omitempty"`
	RecordedBalance int64     `json:"recordedBalance"`
	ReplayedBalance int64     `json:"replayedBalance"`
	Difference      int64     `json:"difference"`
	EntryCount      int       `json:"entryCount"`
	Reconciled      bool      `json:"reconciled"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		CheckedAt:       r.LastChecked,
		AccountID:       r.AccountID,
		Problems:        r.Problems,
		RecordedBalance: r.RecordedBalance,
		ReplayedBalance: r.ReplayedBalance,
		Difference:      r.Difference,
		EntryCount:      r.EntryCount,
		Reconciled:      r.IsReconciled,
	}
}
