package dto

import (
	"time"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// InboundEventRequest is a credit notification from a sibling service.
type InboundEventRequest struct {
	OccurredAt           *time.Time `json:"occurredAt,omitempty"`
	ExternalRef          string     `json:"externalRef"`
	AccountOwnerIdentity string     `json:"accountOwnerIdentity"`
	Category             string     `json:"category"`
	LedgerDomain         string     `json:"ledgerDomain,omitempty"`
	Amount               int64      `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *InboundEventRequest) ToUseCaseInput() usecase.InboundEvent {
	return usecase.InboundEvent{
		OccurredAt:  timeOrZero(r.OccurredAt),
		ExternalRef: r.ExternalRef,
		Token:       r.AccountOwnerIdentity,
		Category:    r.Category,
		Domain:      domain.LedgerDomain(r.LedgerDomain),
		Amount:      r.Amount,
	}
}

// ReceiptIssuedRequest reports an electronic receipt.
type ReceiptIssuedRequest struct {
	IssuedAt             *time.Time `json:"issuedAt,omitempty"`
	TransactionID        string     `json:"transactionId"`
	AccountOwnerIdentity string     `json:"accountOwnerIdentity"`
	TransactionType      string     `json:"transactionType"`
	BranchName           string     `json:"branchName"`
	Amount               int64      `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ReceiptIssuedRequest) ToUseCaseInput() usecase.ReceiptEvent {
	return usecase.ReceiptEvent{
		OccurredAt:      timeOrZero(r.IssuedAt),
		TransactionID:   r.TransactionID,
		Token:           r.AccountOwnerIdentity,
		TransactionType: r.TransactionType,
		BranchName:      r.BranchName,
		Amount:          r.Amount,
	}
}

// CardTransactionRequest reports an approved card purchase.
type CardTransactionRequest struct {
	ApprovedAt           *time.Time `json:"approvedAt,omitempty"`
	TransactionID        string     `json:"transactionId"`
	AccountOwnerIdentity string     `json:"accountOwnerIdentity"`
	BusinessNumber       string     `json:"businessNumber"`
	MerchantName         string     `json:"merchantName"`
	Amount               int64      `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CardTransactionRequest) ToUseCaseInput() usecase.CardTransactionEvent {
	return usecase.CardTransactionEvent{
		OccurredAt:     timeOrZero(r.ApprovedAt),
		TransactionID:  r.TransactionID,
		Token:          r.AccountOwnerIdentity,
		BusinessNumber: r.BusinessNumber,
		MerchantName:   r.MerchantName,
		Amount:         r.Amount,
	}
}

// LedgerQueryRequest asks for a customer's tier and balance.
type LedgerQueryRequest struct {
	AccountOwnerIdentity string `json:"accountOwnerIdentity"`
}

// EnrollRequest opens an account in a ledger domain.
type EnrollRequest struct {
	AccountOwnerIdentity string `json:"accountOwnerIdentity"`
	Domain               string `json:"domain"`
}

// ToUseCaseInput converts to use case input.
func (r *EnrollRequest) ToUseCaseInput() usecase.EnrollInput {
	return usecase.EnrollInput{
		Token:  r.AccountOwnerIdentity,
		Domain: domain.LedgerDomain(r.Domain),
	}
}

// EarnRequest credits an account.
type EarnRequest struct {
	ExternalRef *string `json:"externalRef,omitempty"`
	Category    string  `json:"category"`
	Reason      string  `json:"reason,omitempty"`
	Amount      int64   `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *EarnRequest) ToUseCaseInput(accountID string) usecase.EarnInput {
	return usecase.EarnInput{
		ExternalRef: r.ExternalRef,
		AccountID:   accountID,
		Category:    r.Category,
		Reason:      r.Reason,
		Amount:      r.Amount,
	}
}

// SpendRequest debits an account.
type SpendRequest struct {
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
	Amount   int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *SpendRequest) ToUseCaseInput(accountID string) usecase.SpendInput {
	return usecase.SpendInput{
		AccountID: accountID,
		Category:  r.Category,
		Reason:    r.Reason,
		Amount:    r.Amount,
	}
}

// ConvertRequest moves value into another service's ledger.
type ConvertRequest struct {
	TargetSystem string `json:"targetSystem"`
	Amount       int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ConvertRequest) ToUseCaseInput(accountID string) usecase.ConvertInput {
	return usecase.ConvertInput{
		AccountID:    accountID,
		TargetSystem: r.TargetSystem,
		Amount:       r.Amount,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	ExternalRef   *string `json:"externalRef,omitempty"`
	FromAccountID string  `json:"fromAccountId"`
	ToAccountID   string  `json:"toAccountId"`
	Category      string  `json:"category,omitempty"`
	Amount        int64   `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	category := r.Category
	if category == "" {
		category = domain.CategoryTransfer
	}
	return usecase.TransferInput{
		ExternalRef:   r.ExternalRef,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Category:      category,
		Amount:        r.Amount,
	}
}

// CreateScheduleRequest creates a recurring transfer directive.
type CreateScheduleRequest struct {
	Enabled              *bool  `json:"enabled,omitempty"`
	AccountOwnerIdentity string `json:"accountOwnerIdentity"`
	SourceAccountID      string `json:"sourceAccountId"`
	DestinationAccountID string `json:"destinationAccountId"`
	DayOfMonth           int    `json:"dayOfMonth"`
	Amount               int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input. ownerID is the decoded
// AccountOwnerIdentity.
func (r *CreateScheduleRequest) ToUseCaseInput(ownerID string) usecase.CreateScheduleInput {
	return usecase.CreateScheduleInput{
		Enabled:              r.Enabled,
		OwnerID:              ownerID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		DayOfMonth:           r.DayOfMonth,
		Amount:               r.Amount,
	}
}

// UpdateScheduleRequest changes the given fields of a directive.
type UpdateScheduleRequest struct {
	SourceAccountID      *string `json:"sourceAccountId,omitempty"`
	DestinationAccountID *string `json:"destinationAccountId,omitempty"`
	DayOfMonth           *int    `json:"dayOfMonth,omitempty"`
	Amount               *int64  `json:"amount,omitempty"`
	Enabled              *bool   `json:"enabled,omitempty"`
	AccountOwnerIdentity string  `json:"accountOwnerIdentity"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateScheduleRequest) ToUseCaseInput(id, ownerID string) usecase.UpdateScheduleInput {
	return usecase.UpdateScheduleInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		DayOfMonth:           r.DayOfMonth,
		Amount:               r.Amount,
		Enabled:              r.Enabled,
		ID:                   id,
		OwnerID:              ownerID,
	}
}

// OwnerRequest carries only the caller's identity token.
type OwnerRequest struct {
	AccountOwnerIdentity string `json:"accountOwnerIdentity"`
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
